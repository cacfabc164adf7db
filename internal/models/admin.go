package models

import "time"

// RecentSignup — краткая запись о недавней регистрации.
type RecentSignup struct {
	Email     string    `json:"email"`
	Tier      Tier      `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminStats — агрегаты для админ-панели.
type AdminStats struct {
	TotalUsers     int            `json:"totalUsers"`
	MRR            int            `json:"mrr"`
	ConversionRate int            `json:"conversionRate"`
	RecentSignups  []RecentSignup `json:"recentSignups"`
}

// ComputeStats считает MRR и конверсию по числу пользователей на тарифах.
// Конверсия — доля PRO от всех пользователей в процентах, с округлением.
func ComputeStats(total, basic, pro int, recent []RecentSignup) AdminStats {
	conversion := 0
	if total > 0 {
		conversion = (pro*100*2 + total) / (2 * total)
	}
	if recent == nil {
		recent = []RecentSignup{}
	}
	return AdminStats{
		TotalUsers:     total,
		MRR:            pro*TierPro.MonthlyPrice() + basic*TierBasic.MonthlyPrice(),
		ConversionRate: conversion,
		RecentSignups:  recent,
	}
}

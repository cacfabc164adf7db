package models

// Tier — тариф подписки пользователя.
type Tier string

const (
	// TierNone — подписка не оформлена.
	TierNone Tier = "NONE"
	// TierBasic — базовый тариф.
	TierBasic Tier = "BASIC"
	// TierPro — расширенный тариф.
	TierPro Tier = "PRO"
)

// TopUpPriceCents — стоимость одного дополнительного звонка в центах.
const TopUpPriceCents = 50

// Plan описывает тариф в каталоге цен.
type Plan struct {
	Tier         Tier     `json:"tier"`
	Name         string   `json:"name"`
	PriceMonthly int      `json:"price_monthly"`
	Calls        int      `json:"calls"`
	Features     []string `json:"features"`
}

// Plans возвращает каталог платных тарифов. Бесплатного тарифа нет.
func Plans() []Plan {
	return []Plan{
		{
			Tier:         TierBasic,
			Name:         "Basic Accountability",
			PriceMonthly: 20,
			Calls:        50,
			Features: []string{
				"50 Human Calls per month",
				"Task Dashboard",
				"Email Reminders",
				"Basic Statistics",
			},
		},
		{
			Tier:         TierPro,
			Name:         "Pro Discipline",
			PriceMonthly: 40,
			Calls:        100,
			Features: []string{
				"100 Human Calls per month",
				"Priority Scheduling",
				"Detailed Performance Analytics",
				"Rollover unused calls",
				"Dedicated Verification Agent",
			},
		},
	}
}

// PlanFor ищет тариф в каталоге.
func PlanFor(tier Tier) (Plan, bool) {
	for _, p := range Plans() {
		if p.Tier == tier {
			return p, true
		}
	}
	return Plan{}, false
}

// MonthlyPrice возвращает ежемесячную цену тарифа в долларах, 0 для TierNone.
func (t Tier) MonthlyPrice() int {
	p, ok := PlanFor(t)
	if !ok {
		return 0
	}
	return p.PriceMonthly
}

// Valid сообщает, является ли значение известным тарифом.
func (t Tier) Valid() bool {
	switch t {
	case TierNone, TierBasic, TierPro:
		return true
	}
	return false
}

package models

import "errors"

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrValidation — некорректные входные данные.
	ErrValidation = errors.New("validation error")
	// ErrConflict — запись уже существует или находится в несовместимом состоянии.
	ErrConflict = errors.New("conflict")
)

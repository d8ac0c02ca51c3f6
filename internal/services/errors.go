package services

import "errors"

// Классы ошибок ядра. Хендлеры переводят их в HTTP-коды,
// всё остальное считается внутренней ошибкой.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	// ErrConflict — гонка или устаревшее состояние у клиента
	// (terminal-статус, проигранная конкурентная запись).
	ErrConflict = errors.New("conflict")
	// ErrDuplicateNumber — явно переданный номер уже занят.
	// Авто-нумерация при коллизии перегенерирует, явный номер — нет.
	ErrDuplicateNumber = errors.New("duplicate supplied number")
)

// RuleError — нарушение бизнес-правила. Reason показывается пользователю.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string { return e.Reason }

func ruleErr(reason string) error { return &RuleError{Reason: reason} }

// IsRuleError — удобный чек для хендлеров и тестов.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

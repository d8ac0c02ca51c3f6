package repositories

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate — нарушение уникального индекса (у нас это всегда номер).
// Уникальный индекс в Postgres — единственный авторитетный детектор коллизий;
// проверки "сначала посмотрел, потом вставил" только совещательные.
var ErrDuplicate = errors.New("duplicate key")

const pqUniqueViolation = "23505"

func mapUnique(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrDuplicate
	}
	return err
}

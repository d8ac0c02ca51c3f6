package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Нумерация двух потоков:
//   проекты  PRJ-<год><месяц>-<4 случайные цифры>
//   заказы   SO-<год><месяц>-<5-значная последовательность за период>
// Кандидат генерируется здесь, истина о коллизиях — уникальный индекс в БД.

const NumberRetryBudget = 5

func period(t time.Time) string { return t.Format("200601") }

func ProjectNumber(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PRJ-%s-%04d", period(now), n.Int64()), nil
}

func OrderNumberPrefix(now time.Time) string {
	return fmt.Sprintf("SO-%s-", period(now))
}

func OrderNumber(now time.Time, seq int) string {
	return fmt.Sprintf("%s%05d", OrderNumberPrefix(now), seq)
}

// NextOrderSequence разбирает последний выданный номер периода.
// Пустая строка или чужой формат — период начинается с 1.
func NextOrderSequence(lastNumber string) int {
	idx := strings.LastIndex(lastNumber, "-")
	if idx < 0 {
		return 1
	}
	seq, err := strconv.Atoi(lastNumber[idx+1:])
	if err != nil || seq < 0 {
		return 1
	}
	return seq + 1
}

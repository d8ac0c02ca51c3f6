package notify

import "log"

// Боковой канал уведомлений. Отправка fire-and-forget: транзакции ядра
// не ждут доставку и не падают из-за неё.

const (
	KindDiscountRequested = "discount_requested"
	KindDiscountDecided   = "discount_decided"
	KindDealWon           = "deal_won"
)

type Event struct {
	Kind    string
	DealID  int
	Message string
}

type Notifier interface {
	Notify(e Event) error
}

// Multi рассылает по всем каналам; ошибки пишет в лог и глотает.
type Multi []Notifier

func (m Multi) Notify(e Event) error {
	for _, n := range m {
		if err := n.Notify(e); err != nil {
			log.Printf("[notify][warn] kind=%s deal=%d: %v", e.Kind, e.DealID, err)
		}
	}
	return nil
}

// LogNotifier — канал по умолчанию, когда внешние не настроены.
type LogNotifier struct{}

func (LogNotifier) Notify(e Event) error {
	log.Printf("[notify] kind=%s deal=%d %s", e.Kind, e.DealID, e.Message)
	return nil
}

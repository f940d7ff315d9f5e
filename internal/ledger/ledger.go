package ledger

import "sync"

// Ledger хранит ссылки статей, о которых уже было уведомление.
// Набор только растёт и живёт до конца процесса; на диск не сохраняется.
type Ledger struct {
	mu    sync.Mutex
	links map[string]struct{}
}

// New создаёт пустой реестр.
func New() *Ledger {
	return &Ledger{links: make(map[string]struct{})}
}

// IsNew возвращает true, если ссылка ещё не передавалась в MarkNotified.
func (l *Ledger) IsNew(link string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, seen := l.links[link]
	return !seen
}

// MarkNotified добавляет ссылку в реестр.
func (l *Ledger) MarkNotified(link string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.links[link] = struct{}{}
}

// CheckAndMark атомарно проверяет и отмечает ссылку.
// Возвращает true только для первого вызова с данной ссылкой.
func (l *Ledger) CheckAndMark(link string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, seen := l.links[link]; seen {
		return false
	}
	l.links[link] = struct{}{}
	return true
}

// Len возвращает количество отмеченных ссылок.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.links)
}

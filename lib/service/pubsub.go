package service

import (
	"sync"

	"github.com/getAlby/invoiceflow/db/models"
)

// TopicAll subscribes to every event type.
const TopicAll = "*"

// Pubsub fans committed events out to in-process subscribers, keyed by event type.
type Pubsub struct {
	mu   sync.RWMutex
	subs map[string]map[string]chan models.Event
}

func NewPubsub() *Pubsub {
	ps := &Pubsub{}
	ps.subs = make(map[string]map[string]chan models.Event)
	return ps
}

func (ps *Pubsub) Subscribe(topic string, ch chan models.Event) (subId string, err error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.subs[topic] == nil {
		ps.subs[topic] = make(map[string]chan models.Event)
	}
	id, err := randBytesFromStr(32, alphanumeric)
	if err != nil {
		return "", err
	}
	subId = string(id)
	ps.subs[topic][subId] = ch
	return subId, nil
}

func (ps *Pubsub) Unsubscribe(id string, topic string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.subs[topic] == nil {
		return
	}
	if ps.subs[topic][id] == nil {
		return
	}
	close(ps.subs[topic][id])
	delete(ps.subs[topic], id)
}

// Publish delivers msg to every subscriber of topic without waiting on them. A subscriber
// whose channel is full misses msg and can catch up from the event log.
func (ps *Pubsub) Publish(topic string, msg models.Event) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, ch := range ps.subs[topic] {
		select {
		case ch <- msg:
		default:
		}
	}
	if topic == TopicAll {
		return
	}
	for _, ch := range ps.subs[TopicAll] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Count returns the number of live subscriptions over all topics.
func (ps *Pubsub) Count() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	count := 0
	for _, subs := range ps.subs {
		count += len(subs)
	}
	return count
}

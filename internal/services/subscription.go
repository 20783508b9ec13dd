package services

import (
	"context"
	"sync"
)

// Subscription delivers snapshots of a live view. Only the newest snapshot is
// buffered; a slow consumer skips intermediate ones.
type Subscription[T any] struct {
	updates chan T
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

func newSubscription[T any](cancel context.CancelFunc) *Subscription[T] {
	return &Subscription[T]{
		updates: make(chan T, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Updates is closed once the subscription stops.
func (subscription *Subscription[T]) Updates() <-chan T {
	return subscription.updates
}

// Done is closed after the producer has released its resources.
func (subscription *Subscription[T]) Done() <-chan struct{} {
	return subscription.done
}

func (subscription *Subscription[T]) Cancel() {
	subscription.once.Do(subscription.cancel)
	<-subscription.done
}

// publish must only be called from the producer goroutine.
func (subscription *Subscription[T]) publish(value T) {
	select {
	case subscription.updates <- value:
		return
	default:
	}
	select {
	case <-subscription.updates:
	default:
	}
	select {
	case subscription.updates <- value:
	default:
	}
}

func (subscription *Subscription[T]) finish() {
	close(subscription.updates)
	close(subscription.done)
}

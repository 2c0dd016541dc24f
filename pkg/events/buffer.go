package events

// Buffer holds the events an aggregate raised until they are handed to a
// publisher. The zero value is ready to use.
type Buffer struct {
	pending []DomainEvent
}

// Record appends events in order.
func (b *Buffer) Record(evts ...DomainEvent) {
	b.pending = append(b.pending, evts...)
}

// Pending returns the buffered events, leaving them in place.
func (b *Buffer) Pending() []DomainEvent {
	return b.pending
}

// Drain hands over the buffered events and resets the buffer.
func (b *Buffer) Drain() []DomainEvent {
	out := b.pending
	b.pending = nil
	return out
}

package events

import "sync"

// DefaultBacklog is the per-subscriber channel capacity when config doesn't
// override it (config.EventsConfig.SubscriberBacklog, default 256).
const DefaultBacklog = 256

// Bus fans out Events to per-project subscribers. One Bus instance serves
// the whole process; each project gets its own subscriber set and delivery
// is ordered per subscriber, never across projects (spec.md §5: "across
// projects there is no ordering guarantee").
type Bus struct {
	mu       sync.Mutex
	backlog  int
	projects map[string]*projectTopic
}

type projectTopic struct {
	mu          sync.Mutex
	subscribers map[int]chan Event
	nextID      int
}

// New builds a Bus whose subscriber channels hold up to backlog events
// before the oldest is dropped to make room for the newest.
func New(backlog int) *Bus {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	return &Bus{backlog: backlog, projects: make(map[string]*projectTopic)}
}

// Subscription is a live handle on a project's event stream. Close stops
// delivery and frees the subscriber slot; calls after the first do nothing.
type Subscription struct {
	Events <-chan Event
	topic  *projectTopic
	id     int
}

// Close unregisters the subscription. Safe to call from any goroutine;
// idempotent.
func (s *Subscription) Close() {
	s.topic.mu.Lock()
	defer s.topic.mu.Unlock()
	if ch, ok := s.topic.subscribers[s.id]; ok {
		close(ch)
		delete(s.topic.subscribers, s.id)
	}
}

// Subscribe joins projectID's stream. The caller only ever receives events
// Publish is called with after this point — there is no catchup/replay.
func (b *Bus) Subscribe(projectID string) *Subscription {
	topic := b.topicFor(projectID)

	topic.mu.Lock()
	defer topic.mu.Unlock()
	id := topic.nextID
	topic.nextID++
	ch := make(chan Event, b.backlog)
	topic.subscribers[id] = ch
	return &Subscription{Events: ch, topic: topic, id: id}
}

// Publish delivers ev to every current subscriber of ev.ProjectID. Delivery
// is non-blocking: a subscriber whose channel is full has its oldest
// buffered event dropped to make room, per spec.md §4.7's overflow policy.
func (b *Bus) Publish(ev Event) {
	topic := b.topicFor(ev.ProjectID)

	topic.mu.Lock()
	defer topic.mu.Unlock()
	for _, ch := range topic.subscribers {
		select {
		case ch <- ev:
		default:
			// Backlog full: drop the oldest buffered event, then deliver the
			// newest. The channel is only ever touched here, under topic.mu,
			// so this drain-one-then-send is race-free.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

func (b *Bus) topicFor(projectID string) *projectTopic {
	b.mu.Lock()
	defer b.mu.Unlock()
	topic, ok := b.projects[projectID]
	if !ok {
		topic = &projectTopic{subscribers: make(map[int]chan Event)}
		b.projects[projectID] = topic
	}
	return topic
}

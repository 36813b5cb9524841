package memoryRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"mentorly/models"

	"github.com/google/uuid"
)

type SlotRepo struct {
	mu    sync.Mutex
	items map[string]models.Slot
}

func NewSlotRepo() *SlotRepo {
	return &SlotRepo{items: make(map[string]models.Slot)}
}

func slotKey(s models.Slot) string {
	return s.OfferingID + "|" + s.Date + "|" + s.StartTime
}

func (r *SlotRepo) CreateMany(_ context.Context, slots []models.Slot) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(slots), nil
}

func (r *SlotRepo) insertLocked(slots []models.Slot) int {
	taken := make(map[string]bool, len(r.items))
	for _, s := range r.items {
		taken[slotKey(s)] = true
	}
	now := time.Now().UTC()
	inserted := 0
	for i := range slots {
		if taken[slotKey(slots[i])] {
			continue
		}
		if slots[i].ID == "" {
			slots[i].ID = uuid.New().String()
		}
		if slots[i].CreatedAt.IsZero() {
			slots[i].CreatedAt = now
		}
		r.items[slots[i].ID] = copySlot(slots[i])
		taken[slotKey(slots[i])] = true
		inserted++
	}
	return inserted
}

func (r *SlotRepo) GetByID(_ context.Context, id string) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	out := copySlot(s)
	return &out, nil
}

func (r *SlotRepo) ListByOffering(_ context.Context, offeringID, date string) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Slot
	for _, s := range r.items {
		if s.OfferingID == offeringID && (date == "" || s.Date == date) {
			out = append(out, copySlot(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *SlotRepo) DeleteByOffering(_ context.Context, offeringID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteLocked(offeringID), nil
}

func (r *SlotRepo) deleteLocked(offeringID string) int64 {
	var n int64
	for id, s := range r.items {
		if s.OfferingID == offeringID {
			delete(r.items, id)
			n++
		}
	}
	return n
}

func (r *SlotRepo) ReplaceForOffering(_ context.Context, offeringID string, slots []models.Slot) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteLocked(offeringID)
	return r.insertLocked(slots), nil
}

func (r *SlotRepo) MaxDate(_ context.Context, offeringID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := ""
	for _, s := range r.items {
		if s.OfferingID == offeringID && s.Date > latest {
			latest = s.Date
		}
	}
	return latest, nil
}

func (r *SlotRepo) Book(_ context.Context, prev models.Slot, entry models.SlotBooking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[prev.ID]
	if !ok || cur.Status != prev.Status || cur.BookedCount != prev.BookedCount || cur.Version != prev.Version {
		return models.ErrWriteConflict
	}
	cur = copySlot(cur)
	cur.BookedCount++
	cur.Version++
	cur.Status = prev.StatusFor(prev.BookedCount + 1)
	cur.Bookings = append(cur.Bookings, entry)
	r.items[cur.ID] = cur
	return nil
}

func (r *SlotRepo) Release(_ context.Context, prev models.Slot, bookingID string, cancellation *models.Cancellation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[prev.ID]
	if !ok || cur.BookedCount != prev.BookedCount || cur.Version != prev.Version {
		return models.ErrWriteConflict
	}
	cur = copySlot(cur)
	idx := -1
	for i, b := range cur.Bookings {
		if b.BookingID == bookingID && b.Status != models.BookingStatusCancelled {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.ErrWriteConflict
	}
	cur.Bookings[idx].Status = models.BookingStatusCancelled
	if cancellation != nil {
		c := *cancellation
		cur.Bookings[idx].Cancellation = &c
	}
	cur.BookedCount--
	cur.Version++
	cur.Status = prev.StatusFor(prev.BookedCount - 1)
	r.items[cur.ID] = cur
	return nil
}

func (r *SlotRepo) UpdateBookingEntry(_ context.Context, slotID, bookingID, status, meetingRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[slotID]
	if !ok {
		return models.ErrRecordNotFound
	}
	cur = copySlot(cur)
	for i := range cur.Bookings {
		if cur.Bookings[i].BookingID == bookingID {
			cur.Bookings[i].Status = status
			if meetingRef != "" {
				cur.Bookings[i].MeetingRef = meetingRef
			}
			r.items[slotID] = cur
			return nil
		}
	}
	return models.ErrRecordNotFound
}

func copySlot(s models.Slot) models.Slot {
	s.Bookings = append([]models.SlotBooking(nil), s.Bookings...)
	return s
}

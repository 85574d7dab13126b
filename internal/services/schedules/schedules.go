package schedules

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/signageops/signage-service/internal/store"
	"github.com/signageops/signage-service/internal/types"
)

var (
	ErrBadClockTime    = errors.New("time of day must be in HH:mm format")
	ErrContentBinding  = errors.New("schedule content does not match its content type")
	ErrUnknownPlaylist = errors.New("schedule references an unknown playlist")
	ErrUnknownMedia    = errors.New("schedule references an unknown media item")
)

// ParseClock converts an "HH:mm" local time of day into minutes since
// midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadClockTime, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrBadClockTime, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrBadClockTime, s)
	}
	return hour*60 + minute, nil
}

// Snapshotter persists state after a mutation.
type Snapshotter interface {
	Save()
}

// Service manages the schedule table: a flat list of declarative rules with
// no overlap validation at write time. Conflicts between overlapping active
// windows are entirely the resolver's responsibility.
type Service struct {
	store     *store.Store
	snapshots Snapshotter
}

func NewService(st *store.Store, snapshots Snapshotter) *Service {
	return &Service{store: st, snapshots: snapshots}
}

// validate checks the time fields and the content binding of a request.
func (s *Service) validate(req types.ScheduleRequest) error {
	if _, err := ParseClock(req.StartTime); err != nil {
		return err
	}
	if _, err := ParseClock(req.EndTime); err != nil {
		return err
	}

	switch types.ScheduleContentType(req.ContentType) {
	case types.ScheduleContentPlaylist:
		if req.PlaylistID == nil || req.MediaID != nil {
			return ErrContentBinding
		}
		if _, ok := s.store.GetPlaylist(*req.PlaylistID); !ok {
			return ErrUnknownPlaylist
		}
	case types.ScheduleContentSingleImage:
		if req.MediaID == nil || req.PlaylistID != nil {
			return ErrContentBinding
		}
		if _, ok := s.store.GetMedia(*req.MediaID); !ok {
			return ErrUnknownMedia
		}
	default:
		return ErrContentBinding
	}
	return nil
}

func (s *Service) Create(req types.ScheduleRequest) (types.Schedule, error) {
	if err := s.validate(req); err != nil {
		return types.Schedule{}, err
	}

	// isActive defaults true on creation
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := time.Now()
	sch := types.Schedule{
		ID:          s.store.NextScheduleID(),
		Name:        req.Name,
		ContentType: types.ScheduleContentType(req.ContentType),
		PlaylistID:  req.PlaylistID,
		MediaID:     req.MediaID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		DayOfWeek:   req.DayOfWeek,
		IsActive:    active,
		Priority:    req.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.store.PutSchedule(sch)
	s.snapshots.Save()

	slog.Info("Schedule created",
		slog.Int64("schedule_id", sch.ID),
		slog.String("window", sch.StartTime+"-"+sch.EndTime),
		slog.Int("priority", sch.Priority))

	return sch, nil
}

func (s *Service) Update(id int64, req types.ScheduleRequest) (types.Schedule, bool, error) {
	existing, ok := s.store.GetSchedule(id)
	if !ok {
		return types.Schedule{}, false, nil
	}
	if err := s.validate(req); err != nil {
		return types.Schedule{}, true, err
	}

	existing.Name = req.Name
	existing.ContentType = types.ScheduleContentType(req.ContentType)
	existing.PlaylistID = req.PlaylistID
	existing.MediaID = req.MediaID
	existing.StartTime = req.StartTime
	existing.EndTime = req.EndTime
	existing.DayOfWeek = req.DayOfWeek
	existing.Priority = req.Priority
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	existing.UpdatedAt = time.Now()

	s.store.PutSchedule(existing)
	s.snapshots.Save()

	slog.Info("Schedule updated", slog.Int64("schedule_id", id))
	return existing, true, nil
}

func (s *Service) List() []types.Schedule {
	return s.store.ListSchedules()
}

func (s *Service) Get(id int64) (types.Schedule, bool) {
	return s.store.GetSchedule(id)
}

func (s *Service) Delete(id int64) bool {
	if !s.store.DeleteSchedule(id) {
		return false
	}
	s.snapshots.Save()
	slog.Info("Schedule deleted", slog.Int64("schedule_id", id))
	return true
}

// ToggleActive flips a schedule on or off without deleting it.
func (s *Service) ToggleActive(id int64, active bool) (types.Schedule, bool) {
	existing, ok := s.store.GetSchedule(id)
	if !ok {
		return types.Schedule{}, false
	}

	existing.IsActive = active
	existing.UpdatedAt = time.Now()
	s.store.PutSchedule(existing)
	s.snapshots.Save()

	slog.Info("Schedule toggled",
		slog.Int64("schedule_id", id),
		slog.Bool("is_active", active))
	return existing, true
}

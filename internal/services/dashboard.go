package services

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"khosta-backend-go/internal/models"
	"khosta-backend-go/internal/store"
)

const (
	DashboardListLimit = 5
	recentVisitDays    = 30

	subscriberWriteTimeout = 5 * time.Second
)

type StatusCount struct {
	Status models.Status `json:"status"`
	Label  string        `json:"label"`
	Count  int           `json:"count"`
}

type EndingSoonView struct {
	RecordID      string    `json:"recordId"`
	FullName      string    `json:"fullName"`
	ProcessNumber string    `json:"processNumber"`
	ReleaseDate   time.Time `json:"releaseDate"`
	DaysRemaining int       `json:"daysRemaining"`
}

type Dashboard struct {
	GeneratedAt     time.Time        `json:"generatedAt"`
	TotalRecords    int              `json:"totalRecords"`
	ByStatus        []StatusCount    `json:"byStatus"`
	Recent          []models.Record  `json:"recent"`
	EndingSoon      []EndingSoonView `json:"endingSoon"`
	EndingSoonCount int              `json:"endingSoonCount"`
	ActiveVisitors  int              `json:"activeVisitors"`
	RecentVisits    int              `json:"recentVisits"`
}

func endingSoonViews(items []EndingSoonItem) []EndingSoonView {
	out := make([]EndingSoonView, 0, len(items))
	for _, item := range items {
		out = append(out, EndingSoonView{
			RecordID:      item.Record.ID,
			FullName:      item.Record.FullName,
			ProcessNumber: item.Record.ProcessNumber,
			ReleaseDate:   item.ReleaseDate,
			DaysRemaining: item.DaysRemaining,
		})
	}
	return out
}

// BuildDashboard summarises a snapshot at now.
func BuildDashboard(snap Snapshot, now time.Time) Dashboard {
	counts := map[models.Status]int{}
	for _, r := range snap.Records {
		counts[r.Status]++
	}
	byStatus := make([]StatusCount, 0, len(models.Statuses))
	for _, status := range models.Statuses {
		byStatus = append(byStatus, StatusCount{Status: status, Label: status.Label(), Count: counts[status]})
	}

	ending := EndingSoon(snap.Records, now)
	top := ending
	if len(top) > DashboardListLimit {
		top = top[:DashboardListLimit]
	}

	active := 0
	for _, v := range snap.Visitors {
		if v.Active {
			active++
		}
	}
	since := now.AddDate(0, 0, -recentVisitDays)
	recentVisits := 0
	for _, v := range snap.Visits {
		if !v.VisitDate.Before(since) && !v.VisitDate.After(now) {
			recentVisits++
		}
	}

	return Dashboard{
		GeneratedAt:     now.UTC(),
		TotalRecords:    len(snap.Records),
		ByStatus:        byStatus,
		Recent:          Recent(snap.Records, DashboardListLimit),
		EndingSoon:      endingSoonViews(top),
		EndingSoonCount: len(ending),
		ActiveVisitors:  active,
		RecentVisits:    recentVisits,
	}
}

type DashboardService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *DashboardService) Load(ctx context.Context) (Dashboard, error) {
	snap, err := LoadSnapshot(ctx, s.Store)
	if err != nil {
		return Dashboard{}, err
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	return BuildDashboard(snap, now), nil
}

// DashboardHub pushes a fresh dashboard to every websocket subscriber
// after a mutation. Notifications arriving while a push is pending are
// coalesced into it.
type DashboardHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	pending chan struct{}
	load    func(ctx context.Context) (Dashboard, error)
	logger  *zap.Logger

	writeTimeout time.Duration
}

func NewDashboardHub(load func(ctx context.Context) (Dashboard, error), logger *zap.Logger) *DashboardHub {
	return &DashboardHub{
		clients: map[*websocket.Conn]bool{},
		pending: make(chan struct{}, 1),
		load:    load,
		logger:  logger,

		writeTimeout: subscriberWriteTimeout,
	}
}

// Run owns the fan-out until ctx is cancelled.
func (h *DashboardHub) Run(ctx context.Context) {
	for {
		select {
		case <-h.pending:
			dashboard, err := h.load(ctx)
			if err != nil {
				h.logger.Error("dashboard refresh failed", zap.Error(err))
				continue
			}
			h.broadcast(dashboard)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *DashboardHub) Notify() {
	select {
	case h.pending <- struct{}{}:
	default:
	}
}

// broadcast writes outside the lock so a stalled subscriber cannot block
// Add, Remove or Subscribers. Only Run writes, so writes never overlap.
func (h *DashboardHub) broadcast(dashboard Dashboard) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := conn.WriteJSON(dashboard); err != nil {
			h.logger.Debug("dropping dashboard subscriber", zap.Error(err))
			_ = conn.Close()
			h.Remove(conn)
		}
	}
}

func (h *DashboardHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
}

func (h *DashboardHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

func (h *DashboardHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *DashboardHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}

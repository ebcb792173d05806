package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service"
	"github.com/elC0mpa/cost-doctor/service/anonymize"
	"github.com/elC0mpa/cost-doctor/service/permission"
	"github.com/elC0mpa/cost-doctor/service/query"
	"go.uber.org/zap"
)

type session struct {
	costService       service.CostQueryService
	permissionService service.PermissionService
	clients           service.ClientContext
	logger            *zap.Logger

	builder       *query.Builder
	gate          *permission.Gate
	anonymization *anonymize.State
	detector      *anonymize.SequenceDetector

	busy     atomic.Bool
	mu       sync.RWMutex
	result   *model.QueryResult
	snapshot *model.QuerySnapshot

	now             func() time.Time
	newID           func() string
	detectorOptions []anonymize.DetectorOption
}

// Session is one operator's cost page: the query being edited, the last result and the display toggles
type Session interface {
	Submit(ctx context.Context) (model.QueryResult, error)
	Recheck(ctx context.Context) error
	SetupInstructions(ctx context.Context, environmentID string) (string, error)
	CheckAccess(ctx context.Context, environmentID string) (bool, error)
	View() (model.QueryResult, bool)
	Snapshot() (model.QuerySnapshot, bool)
	PressKey(key string) bool
	ToggleAnonymization() bool
	Anonymized() bool
	Busy() bool
	Builder() *query.Builder
	Gate() *permission.Gate
	Close()
}

// Option customizes a session
type Option func(*session)

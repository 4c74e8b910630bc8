// Package store persists workspaces, their agents and their schedules, and
// applies the scheduling rules on every change.
package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Katzler/shapeshifter/pkg/database"
	"github.com/Katzler/shapeshifter/pkg/models"
	"github.com/Katzler/shapeshifter/pkg/scheduler"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultMaxWorkspaces = 20
	DefaultWorkspaceName = "New Team"
)

// Store is the workspace repository.
type Store struct {
	db            *gorm.DB
	scheduler     *scheduler.Scheduler
	maxWorkspaces int
}

type Option func(*Store)

// WithScheduler sets the generator used by Generate.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(st *Store) { st.scheduler = s }
}

// WithMaxWorkspaces caps how many workspaces may exist. Values below 1 are
// ignored.
func WithMaxWorkspaces(n int) Option {
	return func(st *Store) {
		if n > 0 {
			st.maxWorkspaces = n
		}
	}
}

func New(db *gorm.DB, opts ...Option) *Store {
	st := &Store{
		db:            db,
		scheduler:     scheduler.New(scheduler.DefaultWeights()),
		maxWorkspaces: DefaultMaxWorkspaces,
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Workspaces

func (s *Store) CreateWorkspace(ctx context.Context, name string) (database.Workspace, error) {
	ws := database.Workspace{ID: uuid.NewString(), Name: workspaceName(name)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.Workspace{}).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(s.maxWorkspaces) {
			return ErrWorkspaceLimit
		}
		return tx.Create(&ws).Error
	})
	if err != nil {
		return database.Workspace{}, err
	}
	return ws, nil
}

func workspaceName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return DefaultWorkspaceName
	}
	return name
}

// ListWorkspaces returns workspaces oldest first.
func (s *Store) ListWorkspaces(ctx context.Context) ([]database.Workspace, error) {
	var list []database.Workspace
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) GetWorkspace(ctx context.Context, id string) (database.Workspace, error) {
	return getWorkspace(s.db.WithContext(ctx), id)
}

func getWorkspace(tx *gorm.DB, id string) (database.Workspace, error) {
	var ws database.Workspace
	if err := tx.Where("id = ?", id).First(&ws).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.Workspace{}, ErrWorkspaceNotFound
		}
		return database.Workspace{}, err
	}
	return ws, nil
}

func (s *Store) RenameWorkspace(ctx context.Context, id, name string) (database.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return database.Workspace{}, ErrInvalidName
	}
	var ws database.Workspace
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if ws, err = getWorkspace(tx, id); err != nil {
			return err
		}
		ws.Name = name
		return tx.Save(&ws).Error
	})
	return ws, err
}

// DeleteWorkspace removes the workspace with its agents and schedule.
func (s *Store) DeleteWorkspace(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getWorkspace(tx, id); err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&database.ScheduleSlot{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&database.AgentRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&database.Workspace{}).Error
	})
}

// Agents

// ListAgents returns the workspace's agents in the order they were added.
func (s *Store) ListAgents(ctx context.Context, workspaceID string) ([]models.Agent, error) {
	return listAgents(s.db.WithContext(ctx), workspaceID)
}

func listAgents(tx *gorm.DB, workspaceID string) ([]models.Agent, error) {
	if _, err := getWorkspace(tx, workspaceID); err != nil {
		return nil, err
	}
	var rows []database.AgentRecord
	if err := tx.Where("workspace_id = ?", workspaceID).Order("position, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	agents := make([]models.Agent, 0, len(rows))
	for _, row := range rows {
		a, err := row.Agent()
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, nil
}

func (s *Store) GetAgent(ctx context.Context, workspaceID, agentID string) (models.Agent, error) {
	row, err := getAgentRecord(s.db.WithContext(ctx), workspaceID, agentID)
	if err != nil {
		return models.Agent{}, err
	}
	return row.Agent()
}

func getAgentRecord(tx *gorm.DB, workspaceID, agentID string) (database.AgentRecord, error) {
	var row database.AgentRecord
	err := tx.Where("workspace_id = ? AND id = ?", workspaceID, agentID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if _, wsErr := getWorkspace(tx, workspaceID); wsErr != nil {
			return row, wsErr
		}
		return row, ErrAgentNotFound
	}
	return row, err
}

// AddAgent appends a new agent with no stated availability and the default
// contract target.
func (s *Store) AddAgent(ctx context.Context, workspaceID, name, email string) (models.Agent, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Agent{}, ErrInvalidName
	}
	agent := models.NewAgent(uuid.NewString(), name)
	agent.Email = strings.TrimSpace(email)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getWorkspace(tx, workspaceID); err != nil {
			return err
		}
		var last struct{ Max *int }
		if err := tx.Model(&database.AgentRecord{}).
			Select("MAX(position) AS max").
			Where("workspace_id = ?", workspaceID).
			Scan(&last).Error; err != nil {
			return err
		}
		pos := 0
		if last.Max != nil {
			pos = *last.Max + 1
		}
		row, err := database.NewAgentRecord(workspaceID, pos, agent)
		if err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return models.Agent{}, err
	}
	return agent, nil
}

// updateAgent loads one agent, applies fn and saves the result.
func (s *Store) updateAgent(ctx context.Context, workspaceID, agentID string, fn func(models.Agent) models.Agent) (models.Agent, error) {
	var updated models.Agent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := getAgentRecord(tx, workspaceID, agentID)
		if err != nil {
			return err
		}
		current, err := row.Agent()
		if err != nil {
			return err
		}
		updated = fn(current)
		next, err := database.NewAgentRecord(workspaceID, row.Position, updated)
		if err != nil {
			return err
		}
		next.CreatedAt = row.CreatedAt
		return tx.Save(&next).Error
	})
	if err != nil {
		return models.Agent{}, err
	}
	return updated, nil
}

func (s *Store) RenameAgent(ctx context.Context, workspaceID, agentID, name string) (models.Agent, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Agent{}, ErrInvalidName
	}
	return s.updateAgent(ctx, workspaceID, agentID, func(a models.Agent) models.Agent {
		a.Name = name
		return a
	})
}

// SetContractHours rounds hours to a whole number of at least 1.
func (s *Store) SetContractHours(ctx context.Context, workspaceID, agentID string, hours float64) (models.Agent, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return models.Agent{}, ErrInvalidContractHours
	}
	h := models.ClampContractHours(hours)
	return s.updateAgent(ctx, workspaceID, agentID, func(a models.Agent) models.Agent {
		return a.WithContractHours(h)
	})
}

func (s *Store) SetPreference(ctx context.Context, workspaceID, agentID string, day models.Day, shift models.ShiftID, status models.PreferenceStatus) (models.Agent, error) {
	if !day.Valid() || !shift.Valid() || !status.Valid() {
		return models.Agent{}, fmt.Errorf("set preference: %w", models.ErrUnknownStatus)
	}
	return s.updateAgent(ctx, workspaceID, agentID, func(a models.Agent) models.Agent {
		return a.WithPreference(day, shift, status)
	})
}

func (s *Store) CyclePreference(ctx context.Context, workspaceID, agentID string, day models.Day, shift models.ShiftID) (models.Agent, error) {
	return s.updateAgent(ctx, workspaceID, agentID, func(a models.Agent) models.Agent {
		return a.CyclePreference(day, shift)
	})
}

// DeleteAgent removes the agent and clears every slot they held.
func (s *Store) DeleteAgent(ctx context.Context, workspaceID, agentID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getAgentRecord(tx, workspaceID, agentID); err != nil {
			return err
		}
		schedule, err := getSchedule(tx, workspaceID)
		if err != nil {
			return err
		}
		if err := saveSchedule(tx, workspaceID, scheduler.RemoveAgentFromSchedule(schedule, agentID)); err != nil {
			return err
		}
		return tx.Where("workspace_id = ? AND id = ?", workspaceID, agentID).Delete(&database.AgentRecord{}).Error
	})
}

package store

import (
	"context"
	"fmt"

	"github.com/Katzler/shapeshifter/pkg/database"
	"github.com/Katzler/shapeshifter/pkg/exchange"
	"github.com/Katzler/shapeshifter/pkg/models"
	"github.com/Katzler/shapeshifter/pkg/scheduler"
	"gorm.io/gorm"
)

func (s *Store) GetSchedule(ctx context.Context, workspaceID string) (models.WeekSchedule, error) {
	tx := s.db.WithContext(ctx)
	if _, err := getWorkspace(tx, workspaceID); err != nil {
		return models.WeekSchedule{}, err
	}
	return getSchedule(tx, workspaceID)
}

func getSchedule(tx *gorm.DB, workspaceID string) (models.WeekSchedule, error) {
	var rows []database.ScheduleSlot
	if err := tx.Where("workspace_id = ?", workspaceID).Find(&rows).Error; err != nil {
		return models.WeekSchedule{}, err
	}
	return database.ScheduleFromSlots(rows), nil
}

// saveSchedule replaces every stored slot of the workspace.
func saveSchedule(tx *gorm.DB, workspaceID string, schedule models.WeekSchedule) error {
	if err := tx.Where("workspace_id = ?", workspaceID).Delete(&database.ScheduleSlot{}).Error; err != nil {
		return err
	}
	rows := database.SlotsFromSchedule(workspaceID, schedule)
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// SaveSchedule replaces the schedule. Slots naming agents outside the
// workspace are dropped.
func (s *Store) SaveSchedule(ctx context.Context, workspaceID string, schedule models.WeekSchedule) (models.WeekSchedule, error) {
	var saved models.WeekSchedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		agents, err := listAgents(tx, workspaceID)
		if err != nil {
			return err
		}
		saved = knownOnly(schedule, agents)
		return saveSchedule(tx, workspaceID, saved)
	})
	return saved, err
}

func knownOnly(schedule models.WeekSchedule, agents []models.Agent) models.WeekSchedule {
	known := make(map[string]bool, len(agents))
	for _, a := range agents {
		known[a.ID] = true
	}
	for _, asgn := range schedule.Assignments() {
		if !known[asgn.AgentID] {
			schedule = schedule.With(asgn.Day, asgn.Shift, models.Unassigned)
		}
	}
	return schedule
}

// SetAssignment fills or clears one slot. Filling runs ValidateAssignment
// against the rest of the schedule and returns a *scheduler.ViolationError
// when the rules are broken; clearing is always allowed.
func (s *Store) SetAssignment(ctx context.Context, workspaceID string, day models.Day, shift models.ShiftID, agentID string) (models.WeekSchedule, error) {
	if !day.Valid() || !shift.Valid() {
		return models.WeekSchedule{}, fmt.Errorf("set assignment: %w", models.ErrUnknownShift)
	}
	var updated models.WeekSchedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getWorkspace(tx, workspaceID); err != nil {
			return err
		}
		current, err := getSchedule(tx, workspaceID)
		if err != nil {
			return err
		}
		rest := current.With(day, shift, models.Unassigned)

		if agentID != models.Unassigned {
			row, err := getAgentRecord(tx, workspaceID, agentID)
			if err != nil {
				return err
			}
			agent, err := row.Agent()
			if err != nil {
				return err
			}
			if err := scheduler.ValidateAssignment(agent, day, shift, rest).Err(); err != nil {
				return err
			}
		}

		updated = rest.With(day, shift, agentID)
		return saveSchedule(tx, workspaceID, updated)
	})
	if err != nil {
		return models.WeekSchedule{}, err
	}
	return updated, nil
}

func (s *Store) ClearSchedule(ctx context.Context, workspaceID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getWorkspace(tx, workspaceID); err != nil {
			return err
		}
		return saveSchedule(tx, workspaceID, models.WeekSchedule{})
	})
}

// Generate replaces the schedule with a freshly generated one.
func (s *Store) Generate(ctx context.Context, workspaceID string) (scheduler.Result, error) {
	var result scheduler.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		agents, err := listAgents(tx, workspaceID)
		if err != nil {
			return err
		}
		result = s.scheduler.GenerateReport(agents)
		return saveSchedule(tx, workspaceID, result.Schedule)
	})
	if err != nil {
		return scheduler.Result{}, err
	}
	return result, nil
}

// Export returns the workspace as an exchange document.
func (s *Store) Export(ctx context.Context, workspaceID string) (exchange.Document, error) {
	tx := s.db.WithContext(ctx)
	ws, err := getWorkspace(tx, workspaceID)
	if err != nil {
		return exchange.Document{}, err
	}
	agents, err := listAgents(tx, workspaceID)
	if err != nil {
		return exchange.Document{}, err
	}
	schedule, err := getSchedule(tx, workspaceID)
	if err != nil {
		return exchange.Document{}, err
	}
	return exchange.Document{
		Version:       exchange.CurrentVersion,
		WorkspaceName: ws.Name,
		Agents:        agents,
		Schedule:      schedule,
	}, nil
}

// Import replaces the workspace's agents and schedule with doc, which must
// already be normalized. The workspace name is kept.
func (s *Store) Import(ctx context.Context, workspaceID string, doc exchange.Document) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getWorkspace(tx, workspaceID); err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&database.AgentRecord{}).Error; err != nil {
			return err
		}
		for i, a := range doc.Agents {
			row, err := database.NewAgentRecord(workspaceID, i, a)
			if err != nil {
				return err
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return saveSchedule(tx, workspaceID, knownOnly(doc.Schedule, doc.Agents))
	})
}

// Package scheduler runs the pipeline on cron schedules and exports each result.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/common"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/interfaces"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

// TargetStatus reports a registered target.
type TargetStatus struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	Location  string     `json:"location"`
	Period    string     `json:"period,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastRunID string     `json:"last_run_id,omitempty"`
	LastFiles []string   `json:"last_files,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	IsRunning bool       `json:"is_running"`
}

type targetEntry struct {
	target    common.ScheduledTarget
	cronID    cron.EntryID
	lastRun   *time.Time
	lastRunID string
	lastFiles []string
	lastError string
	isRunning bool
}

// Service owns the cron runner and the registered targets.
type Service struct {
	runner   interfaces.PipelineRunner
	exporter interfaces.ReportExporter
	formats  []string
	cron     *cron.Cron
	logger   arbor.ILogger
	now      func() time.Time

	jobMu    sync.Mutex // protects targets and running
	globalMu sync.Mutex // one scheduled run at a time
	targets  map[string]*targetEntry
	running  bool
}

// NewService creates a scheduler. Results are exported in formats.
func NewService(runner interfaces.PipelineRunner, exporter interfaces.ReportExporter, formats []string, logger arbor.ILogger) *Service {
	return &Service{
		runner:   runner,
		exporter: exporter,
		formats:  append([]string(nil), formats...),
		cron:     cron.New(),
		logger:   logger,
		now:      time.Now,
		targets:  make(map[string]*targetEntry),
	}
}

// RegisterTarget validates and schedules a target.
func (s *Service) RegisterTarget(target common.ScheduledTarget) error {
	if target.Name == "" {
		return fmt.Errorf("scheduled target requires a name")
	}
	if err := common.ValidateSchedule(target.Schedule); err != nil {
		return fmt.Errorf("invalid schedule for %s: %w", target.Name, err)
	}
	if target.Period != "" {
		if _, err := models.ParsePeriod(target.Period); err != nil {
			return fmt.Errorf("invalid period for %s: %w", target.Name, err)
		}
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if _, exists := s.targets[target.Name]; exists {
		return fmt.Errorf("target %s already registered", target.Name)
	}

	name := target.Name
	cronID, err := s.cron.AddFunc(target.Schedule, func() {
		if err := s.execute(name); err != nil {
			s.logger.Warn().Str("target", name).Err(err).Msg("Scheduled run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add target to cron: %w", err)
	}

	s.targets[name] = &targetEntry{target: target, cronID: cronID}
	s.logger.Info().
		Str("target", name).
		Str("schedule", target.Schedule).
		Str("location", target.Location).
		Msg("Scheduled target registered")
	return nil
}

// Start begins firing the registered targets.
func (s *Service) Start() error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	s.cron.Start()
	s.running = true
	s.logger.Info().Int("targets", len(s.targets)).Msg("Scheduler started")
	return nil
}

// Stop halts the cron runner and waits for an in-flight run to finish.
func (s *Service) Stop() error {
	s.jobMu.Lock()
	if !s.running {
		s.jobMu.Unlock()
		return nil
	}
	s.running = false
	s.jobMu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// IsRunning reports whether Start was called without a matching Stop.
func (s *Service) IsRunning() bool {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	return s.running
}

// TriggerTarget runs a target immediately and waits for it.
func (s *Service) TriggerTarget(name string) error {
	return s.execute(name)
}

// Statuses returns every target sorted by name.
func (s *Service) Statuses() []TargetStatus {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	next := map[cron.EntryID]time.Time{}
	for _, e := range s.cron.Entries() {
		next[e.ID] = e.Next
	}

	out := make([]TargetStatus, 0, len(s.targets))
	for _, entry := range s.targets {
		st := TargetStatus{
			Name:      entry.target.Name,
			Schedule:  entry.target.Schedule,
			Location:  entry.target.Location,
			Period:    entry.target.Period,
			LastRun:   entry.lastRun,
			LastRunID: entry.lastRunID,
			LastFiles: append([]string(nil), entry.lastFiles...),
			LastError: entry.lastError,
			IsRunning: entry.isRunning,
		}
		if t, ok := next[entry.cronID]; ok && !t.IsZero() {
			st.NextRun = &t
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// execute runs one target under the global mutex, exports the result and
// records the outcome. Panics are recorded as the target's last error.
func (s *Service) execute(name string) (err error) {
	s.globalMu.Lock()
	defer s.globalMu.Unlock()

	s.jobMu.Lock()
	entry, exists := s.targets[name]
	if !exists {
		s.jobMu.Unlock()
		return fmt.Errorf("target %s not found", name)
	}
	entry.isRunning = true
	target := entry.target
	s.jobMu.Unlock()

	var (
		runID string
		files []string
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			s.logger.Error().Str("target", name).Str("panic", fmt.Sprintf("%v", r)).Msg("Scheduled run panicked")
		}
		finished := s.now()
		s.jobMu.Lock()
		entry.isRunning = false
		entry.lastRun = &finished
		entry.lastRunID = runID
		entry.lastFiles = files
		entry.lastError = ""
		if err != nil {
			entry.lastError = err.Error()
		}
		s.jobMu.Unlock()
	}()

	period := target.Period
	if period == "" {
		period = previousMonth(s.now())
	}
	kind, err := models.ParseLocationKind(target.Kind)
	if err != nil {
		return err
	}

	s.logger.Info().Str("target", name).Str("location", target.Location).Str("period", period).Msg("Scheduled run started")

	result, runErr := s.runner.Run(context.Background(), models.PipelineRequest{
		Location: target.Location,
		Kind:     kind,
		Period:   period,
		Keywords: target.Keywords,
	})
	if runErr != nil {
		if s.exporter != nil {
			files, _ = s.exporter.ExportError(target.Location, period, runErr, s.formats...)
		}
		return runErr
	}

	runID = result.RunID
	if s.exporter != nil {
		files, err = s.exporter.Export(result, s.formats...)
		if err != nil {
			return err
		}
	}

	s.logger.Info().Str("target", name).Str("run_id", runID).Strs("files", files).Msg("Scheduled run completed")
	return nil
}

// previousMonth is the last complete calendar month before now, as YYYY-MM.
func previousMonth(now time.Time) string {
	return models.PeriodOf(now).Previous().String()
}

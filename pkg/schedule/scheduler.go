package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task is run either on a cron Spec or, when Spec is empty, every Interval
// after InitialDelay.
type Task struct {
	id cron.EntryID

	Name         string
	Spec         string
	InitialDelay time.Duration
	Interval     time.Duration
	Do           func()
}

var (
	ErrTaskAdded = errors.New("task already added")
)

type IntervalSchedule struct {
	once         sync.Once
	InitialDelay time.Duration
	Interval     time.Duration
}

func (s *IntervalSchedule) Next(t time.Time) time.Time {
	interval := s.Interval
	s.once.Do(func() {
		interval = s.InitialDelay
	})
	return t.Add(interval)
}

type Scheduler struct {
	cron  *cron.Cron
	tasks map[string]*Task
	mux   sync.RWMutex
}

func NewScheduler() *Scheduler {
	logger := cron.PrintfLogger(zap.NewStdLog(zap.L().Named("schedule")))
	return &Scheduler{
		cron:  cron.New(cron.WithChain(cron.Recover(logger))),
		tasks: make(map[string]*Task),
	}
}

func (s *Scheduler) Name() string {
	return "schedule"
}

func (s *Scheduler) AddTask(task *Task) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if _, exists := s.tasks[task.Name]; exists {
		return ErrTaskAdded
	}

	var schedule cron.Schedule
	if task.Spec != "" {
		parsed, err := cron.ParseStandard(task.Spec)
		if err != nil {
			return fmt.Errorf("invalid schedule for task %s: %w", task.Name, err)
		}
		schedule = parsed
	} else {
		schedule = &IntervalSchedule{
			InitialDelay: task.InitialDelay,
			Interval:     task.Interval,
		}
	}
	task.id = s.cron.Schedule(schedule, cron.FuncJob(task.Do))
	s.tasks[task.Name] = task
	return nil
}

func (s *Scheduler) GetTask(name string) *Task {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.tasks[name]
}

// Next returns the next run time of the named task, or the zero time.
func (s *Scheduler) Next(name string) time.Time {
	task := s.GetTask(name)
	if task == nil {
		return time.Time{}
	}
	return s.cron.Entry(task.id).Next
}

func (s *Scheduler) Start() error {
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

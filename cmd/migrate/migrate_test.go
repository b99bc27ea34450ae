package main

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockMigrator struct{ mock.Mock }

func (m *mockMigrator) Up() error { return m.Called().Error(0) }
func (m *mockMigrator) Down() error { return m.Called().Error(0) }
func (m *mockMigrator) Steps(n int) error { return m.Called(n).Error(0) }
func (m *mockMigrator) Migrate(v uint) error { return m.Called(v).Error(0) }
func (m *mockMigrator) Force(v int) error { return m.Called(v).Error(0) }

func (m *mockMigrator) Version() (uint, bool, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		action  string
		steps   int
		version int
		setup   func(m *mockMigrator)
		wantErr bool
	}{
		{
			name:   "up",
			action: "up",
			setup: func(m *mockMigrator) {
				m.On("Up").Return(nil)
				m.On("Version").Return(uint(4), false, nil)
			},
		},
		{
			name:   "up with no change",
			action: "up",
			setup: func(m *mockMigrator) {
				m.On("Up").Return(migrate.ErrNoChange)
				m.On("Version").Return(uint(4), false, nil)
			},
		},
		{
			name:   "down to empty schema",
			action: "down",
			setup: func(m *mockMigrator) {
				m.On("Down").Return(nil)
				m.On("Version").Return(uint(0), false, migrate.ErrNilVersion)
			},
		},
		{
			name:   "steps back",
			action: "steps",
			steps:  -1,
			setup: func(m *mockMigrator) {
				m.On("Steps", -1).Return(nil)
				m.On("Version").Return(uint(3), false, nil)
			},
		},
		{
			name:    "goto",
			action:  "goto",
			version: 2,
			setup: func(m *mockMigrator) {
				m.On("Migrate", uint(2)).Return(nil)
				m.On("Version").Return(uint(2), false, nil)
			},
		},
		{
			name:    "force",
			action:  "force",
			version: 3,
			setup: func(m *mockMigrator) {
				m.On("Force", 3).Return(nil)
				m.On("Version").Return(uint(3), false, nil)
			},
		},
		{name: "steps requires count", action: "steps", wantErr: true},
		{name: "force requires version", action: "force", version: -1, wantErr: true},
		{name: "unknown action", action: "create", wantErr: true},
		{
			name:   "migration failure",
			action: "up",
			setup: func(m *mockMigrator) {
				m.On("Up").Return(errors.New("syntax error at or near"))
			},
			wantErr: true,
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockMigrator{}
			if tt.setup != nil {
				tt.setup(m)
			}

			err := run(m, tt.action, tt.steps, tt.version, logger)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			m.AssertExpectations(t)
		})
	}
}

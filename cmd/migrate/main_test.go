package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMigrator struct {
	mock.Mock
}

func (m *mockMigrator) Up() error {
	return m.Called().Error(0)
}

func (m *mockMigrator) Down() error {
	return m.Called().Error(0)
}

func (m *mockMigrator) Version() (uint, bool, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func (m *mockMigrator) Force(version int) error {
	return m.Called(version).Error(0)
}

func TestRun_Commands(t *testing.T) {
	m := &mockMigrator{}
	m.On("Up").Return(nil).Once()
	m.On("Down").Return(nil).Once()
	m.On("Force", 1).Return(nil).Once()
	m.On("Version").Return(uint(2), true, nil).Once()

	var out bytes.Buffer
	require.NoError(t, run(m, []string{"up"}, &out))
	require.NoError(t, run(m, []string{"down"}, &out))
	require.NoError(t, run(m, []string{"force", "1"}, &out))
	require.NoError(t, run(m, []string{"version"}, &out))

	assert.Equal(t, "version 2 dirty=true\n", out.String())
	m.AssertExpectations(t)
}

func TestRun_PropagatesErrors(t *testing.T) {
	m := &mockMigrator{}
	m.On("Down").Return(errors.New("no migration to roll back"))

	err := run(m, []string{"down"}, &bytes.Buffer{})
	assert.EqualError(t, err, "no migration to roll back")
}

func TestRun_RejectsBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "usage"},
		{"unknown command", []string{"sideways"}, `unknown command "sideways"`},
		{"force without version", []string{"force"}, "usage"},
		{"force with text", []string{"force", "two"}, `invalid version "two"`},
		{"force negative", []string{"force", "-1"}, `invalid version "-1"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockMigrator{}
			err := run(m, tt.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			m.AssertNotCalled(t, "Force", mock.Anything)
		})
	}
}

package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/zenith/internal/ai"
	"github.com/dvloznov/zenith/internal/ai/aitest"
)

func execute(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--db", db}, args...))
	err := root.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"ZENITH_CONFIG", "GEMINI_API_KEY", "GOOGLE_CLOUD_PROJECT", "ZENITH_DB", "ZENITH_LOG_FORMAT", "ZENITH_LOG_LEVEL"} {
		t.Setenv(name, "")
	}
	return filepath.Join(t.TempDir(), "session.db")
}

func TestCLI_LedgerAndGoals(t *testing.T) {
	db := setupEnv(t)

	out, err := execute(t, db, "goal", "add", "Laptop", "300")
	require.NoError(t, err)
	assert.Contains(t, out, "Added goal Laptop")
	assert.Contains(t, out, "+25 points (total 25)")

	out, err = execute(t, db, "tx", "add", "-d", "Paycheck", "-a", "350", "-t", "income", "-c", "Salary", "--date", "2024-06-01")
	require.NoError(t, err)
	assert.Contains(t, out, "+110 points (total 135)")
	assert.Contains(t, out, "Goal completed: Laptop")

	out, err = execute(t, db, "tx", "add", "-d", "Coffee", "-a", "4.50", "-c", "Dining Out", "--date", "2024-06-02")
	require.NoError(t, err)

	out, err = execute(t, db, "snapshot")
	require.NoError(t, err)
	assert.Contains(t, out, "Income:   $350.00")
	assert.Contains(t, out, "Expenses: $4.50")
	assert.Contains(t, out, "Balance:  $345.50")
	assert.Contains(t, out, "Points:   145")

	out, err = execute(t, db, "tx", "list", "--type", "expense")
	require.NoError(t, err)
	assert.Contains(t, out, "Coffee")
	assert.NotContains(t, out, "Paycheck")

	out, err = execute(t, db, "goal", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Laptop")
	assert.Contains(t, lines[1], "true")
}

func TestCLI_InvalidInputDoesNotSave(t *testing.T) {
	db := setupEnv(t)

	_, err := execute(t, db, "tx", "add", "-d", "Coffee", "-a", "-1", "-c", "Dining Out")
	require.Error(t, err)

	_, err = execute(t, db, "tx", "add", "-d", "", "-a", "1", "-c", "Dining Out")
	require.Error(t, err)

	out, err := execute(t, db, "snapshot")
	require.NoError(t, err)
	assert.Contains(t, out, "Points:   0")
}

func TestCLI_DeleteUnknownTransaction(t *testing.T) {
	db := setupEnv(t)
	_, err := execute(t, db, "tx", "delete", "nope")
	assert.ErrorContains(t, err, "not found")
}

func TestCLI_AICommandsNeedGemini(t *testing.T) {
	db := setupEnv(t)
	_, err := execute(t, db, "scenario", "Buy a car")
	assert.ErrorContains(t, err, "needs Gemini")

	_, err = execute(t, db, "plan")
	assert.ErrorContains(t, err, "pass a goal id or --all")
}

func useGateway(t *testing.T, gw ai.Gateway) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "test-key")
	prev := newGateway
	newGateway = func(context.Context, ai.GeminiConfig, zerolog.Logger) (ai.Gateway, error) {
		return gw, nil
	}
	t.Cleanup(func() { newGateway = prev })
}

var addedGoalID = regexp.MustCompile(`Added goal \S+ \(([^)]+)\)`)

func TestCLI_FailedPlanIsSaved(t *testing.T) {
	db := setupEnv(t)

	out, err := execute(t, db, "goal", "add", "Laptop", "900")
	require.NoError(t, err)
	m := addedGoalID.FindStringSubmatch(out)
	require.Len(t, m, 2)
	goalID := m[1]

	useGateway(t, &aitest.MockGateway{
		GeneratePlanFunc: func(ctx context.Context, pc ai.PlanContext) (string, error) {
			return "", errors.New("model overloaded")
		},
	})
	_, err = execute(t, db, "plan", goalID)
	assert.ErrorContains(t, err, "model overloaded")

	out, err = execute(t, db, "goal", "show", goalID)
	require.NoError(t, err)
	assert.Contains(t, out, "plan: error")

	useGateway(t, &aitest.MockGateway{
		GeneratePlanFunc: func(ctx context.Context, pc ai.PlanContext) (string, error) {
			return "Save $90 a month.", nil
		},
	})
	out, err = execute(t, db, "plan", goalID)
	require.NoError(t, err)
	assert.Contains(t, out, "plan: generated")
	assert.Contains(t, out, "Save $90 a month.")
}

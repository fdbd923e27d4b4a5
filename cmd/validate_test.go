package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ocdsmap.dev/pkg/ocdsmap/internal/domain"
)

func TestValidateCmd(t *testing.T) {
	cmd, mockWorkflow := newTestRoot(t, newValidateCmd())

	mockWorkflow.On("Validate", mock.Anything, domain.ValidateArgs{
		Template: "mapping.xlsx",
		Source:   domain.SourceArgs{Driver: "csv", Connection: "rows.csv"},
	}).Return(nil).Once()

	cmd.SetArgs([]string{"validate", "-m", "mapping.xlsx", "--driver", "csv", "-c", "rows.csv"})
	require.NoError(t, cmd.Execute())
}

func TestValidateCmd_MissingColumns(t *testing.T) {
	cmd, mockWorkflow := newTestRoot(t, newValidateCmd())

	mockWorkflow.On("Validate", mock.Anything, mock.Anything).
		Return(errors.Join(domain.ErrMissingColumns, errors.New("title"))).Once()

	cmd.SetArgs([]string{"validate"})
	assert.ErrorIs(t, cmd.Execute(), domain.ErrMissingColumns)
}

func TestNewValidateCmd(t *testing.T) {
	cmd := newValidateCmd()

	assert.Equal(t, "validate", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, validateLongDescription, cmd.Long)
}

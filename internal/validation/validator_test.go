package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateHex(t *testing.T) {
	assert.NoError(t, ValidateHex("deadbeef"))
	assert.NoError(t, ValidateHex("  00ff  "))
	assert.Error(t, ValidateHex(""))
	assert.Error(t, ValidateHex("abc"))
	assert.Error(t, ValidateHex("zz"))
}

func TestValidateFormula(t *testing.T) {
	assert.NoError(t, ValidateFormula("(a & b) | c", true))
	assert.NoError(t, ValidateFormula("~a | b", false))
	assert.Error(t, ValidateFormula("", true))
	assert.Error(t, ValidateFormula("a &", true))
	assert.Error(t, ValidateFormula("~a | b", true))
}

func TestValidatePartyName(t *testing.T) {
	assert.NoError(t, ValidatePartyName("alice"))
	assert.NoError(t, ValidatePartyName("node-7"))
	assert.Error(t, ValidatePartyName(""))
	assert.Error(t, ValidatePartyName("a|b"))
	assert.Error(t, ValidatePartyName("two words"))
	assert.Error(t, ValidatePartyName("AND"))
}

func TestValidateSplitParams(t *testing.T) {
	assert.NoError(t, ValidateSplitParams(5, 3))
	assert.Error(t, ValidateSplitParams(1, 2))
	assert.Error(t, ValidateSplitParams(256, 3))
	assert.Error(t, ValidateSplitParams(5, 1))
	assert.Error(t, ValidateSplitParams(3, 4))
}

func TestValidateThreshold(t *testing.T) {
	assert.NoError(t, ValidateThreshold(5, 1))
	assert.NoError(t, ValidateThreshold(5, 5))
	assert.Error(t, ValidateThreshold(5, 0))
	assert.Error(t, ValidateThreshold(4, 5))
}

func TestValidatePassphrase(t *testing.T) {
	assert.NoError(t, ValidatePassphrase("long enough", 8))
	assert.Error(t, ValidatePassphrase("short", 8))
	assert.Error(t, ValidatePassphrase("with\x00null", 4))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "a\nb", SanitizeInput("  a \r\n b \r"))
	assert.Equal(t, "single", SanitizeInput("\tsingle\n"))
}

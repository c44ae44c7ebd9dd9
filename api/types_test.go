package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	registrystorage "github.com/polystake/noderegistry/registry/storage"
)

// TestHexMarshalJSON tests hex marshaling to JSON.
func TestHexMarshalJSON(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		hex      Hex
		expected string
	}{
		{
			name:     "empty hex",
			hex:      Hex{},
			expected: `""`,
		},
		{
			name:     "simple hex",
			hex:      Hex{0x01, 0x02, 0x03},
			expected: `"010203"`,
		},
		{
			name:     "complex hex",
			hex:      Hex{0xDE, 0xAD, 0xBE, 0xEF},
			expected: `"deadbeef"`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			data, err := tc.hex.MarshalJSON()

			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(data))
		})
	}
}

// TestHexUnmarshalJSON tests hex unmarshaling from JSON.
func TestHexUnmarshalJSON(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		json     string
		expected Hex
		hasError bool
	}{
		{
			name:     "empty hex",
			json:     `""`,
			expected: Hex{},
			hasError: false,
		},
		{
			name:     "simple hex",
			json:     `"010203"`,
			expected: Hex{0x01, 0x02, 0x03},
			hasError: false,
		},
		{
			name:     "hex with 0x prefix",
			json:     `"0xdeadbeef"`,
			expected: Hex{0xDE, 0xAD, 0xBE, 0xEF},
			hasError: false,
		},
		{
			name:     "invalid hex string - no quotes",
			json:     `deadbeef`,
			expected: nil,
			hasError: true,
		},
		{
			name:     "invalid hex chars",
			json:     `"zzz"`,
			expected: nil,
			hasError: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var h Hex
			err := h.UnmarshalJSON([]byte(tc.json))

			if tc.hasError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, h)
			}
		})
	}
}

// TestHexBind tests binding string to Hex.
func TestHexBind(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected Hex
		hasError bool
	}{
		{
			name:     "empty string",
			input:    "",
			expected: Hex{},
			hasError: false,
		},
		{
			name:     "simple hex",
			input:    "010203",
			expected: Hex{0x01, 0x02, 0x03},
			hasError: false,
		},
		{
			name:     "hex with 0x prefix",
			input:    "0xdeadbeef",
			expected: Hex{0xDE, 0xAD, 0xBE, 0xEF},
			hasError: false,
		},
		{
			name:     "invalid hex chars",
			input:    "zzz",
			expected: nil,
			hasError: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var h Hex
			err := h.Bind(tc.input)

			if tc.hasError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, h)
			}
		})
	}
}

// TestHexSliceBind tests binding string to HexSlice.
func TestHexSliceBind(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected HexSlice
		hasError bool
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
			hasError: false,
		},
		{
			name:     "single hex",
			input:    "010203",
			expected: HexSlice{Hex{0x01, 0x02, 0x03}},
			hasError: false,
		},
		{
			name:  "multiple hex values",
			input: "010203,0xdeadbeef,abcdef",
			expected: HexSlice{
				Hex{0x01, 0x02, 0x03},
				Hex{0xDE, 0xAD, 0xBE, 0xEF},
				Hex{0xAB, 0xCD, 0xEF},
			},
			hasError: false,
		},
		{
			name:     "invalid hex in list",
			input:    "010203,zzz",
			expected: nil,
			hasError: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var hs HexSlice
			err := hs.Bind(tc.input)

			if tc.hasError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, hs)
			}
		})
	}
}

// TestUint64SliceBind tests binding string to Uint64Slice.
func TestUint64SliceBind(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected Uint64Slice
		hasError bool
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
			hasError: false,
		},
		{
			name:     "single number",
			input:    "123",
			expected: Uint64Slice{123},
			hasError: false,
		},
		{
			name:     "multiple numbers",
			input:    "123,456,789",
			expected: Uint64Slice{123, 456, 789},
			hasError: false,
		},
		{
			name:     "invalid number in list",
			input:    "123,abc",
			expected: nil,
			hasError: true,
		},
		{
			name:     "overflow uint64",
			input:    "18446744073709551616", // 2^64
			expected: nil,
			hasError: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var us Uint64Slice
			err := us.Bind(tc.input)

			if tc.hasError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, us)
			}
		})
	}
}

// TestStatusBind tests binding string to Status.
func TestStatusBind(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected Status
		hasError bool
	}{
		{
			name:     "active status",
			input:    "ACTIVE",
			expected: Status(registrystorage.StatusActive),
			hasError: false,
		},
		{
			name:     "staked status",
			input:    "STAKED",
			expected: Status(registrystorage.StatusStaked),
			hasError: false,
		},
		{
			name:     "unknown status",
			input:    "NOT_A_STATUS",
			expected: Status(0),
			hasError: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var s Status
			err := s.Bind(tc.input)

			if tc.hasError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, s)
			}
		})
	}
}

// TestStatusMarshalJSON tests marshaling Status to JSON.
func TestStatusMarshalJSON(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		status   Status
		expected string
	}{
		{
			name:     "active status",
			status:   Status(registrystorage.StatusActive),
			expected: `"ACTIVE"`,
		},
		{
			name:     "unstaked status",
			status:   Status(registrystorage.StatusUnstaked),
			expected: `"UNSTAKED"`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			data, err := tc.status.MarshalJSON()

			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(data))
		})
	}
}

// TestStatusUnmarshalJSON tests unmarshaling Status from JSON.
func TestStatusUnmarshalJSON(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		json     string
		expected Status
		hasError bool
	}{
		{
			name:     "active status",
			json:     `"ACTIVE"`,
			expected: Status(registrystorage.StatusActive),
			hasError: false,
		},
		{
			name:     "exit status",
			json:     `"EXIT"`,
			expected: Status(registrystorage.StatusExit),
			hasError: false,
		},
		{
			name:     "invalid status",
			json:     `"INVALID_STATUS"`,
			expected: Status(0),
			hasError: true,
		},
		{
			name:     "non-string value",
			json:     `123`,
			expected: Status(0),
			hasError: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var s Status
			err := s.UnmarshalJSON([]byte(tc.json))

			if tc.hasError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, s)
			}
		})
	}
}

// TestStatusSliceBind tests binding string to StatusSlice.
func TestStatusSliceBind(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected StatusSlice
		hasError bool
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
			hasError: false,
		},
		{
			name:     "single status",
			input:    "ACTIVE",
			expected: StatusSlice{Status(registrystorage.StatusActive)},
			hasError: false,
		},
		{
			name:  "multiple statuses",
			input: "ACTIVE,STAKED,EXIT",
			expected: StatusSlice{
				Status(registrystorage.StatusActive),
				Status(registrystorage.StatusStaked),
				Status(registrystorage.StatusExit),
			},
			hasError: false,
		},
		{
			name:     "invalid status in list",
			input:    "ACTIVE,INVALID_STATUS",
			expected: nil,
			hasError: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var ss StatusSlice
			err := ss.Bind(tc.input)

			if tc.hasError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, ss)
			}
		})
	}
}

// TestStructWithHexAndStatus tests marshaling and unmarshaling a struct with Hex and Status fields.
func TestStructWithHexAndStatus(t *testing.T) {
	t.Parallel()

	type TestStruct struct {
		ID     Hex      `json:"id"`
		Data   Hex      `json:"data"`
		Status Status   `json:"status"`
		List   HexSlice `json:"list"`
	}

	original := TestStruct{
		ID:     Hex{0x01, 0x02, 0x03},
		Data:   Hex{0xDE, 0xAD, 0xBE, 0xEF},
		Status: Status(registrystorage.StatusStaked),
		List: HexSlice{
			Hex{0xAA, 0xBB},
			Hex{0xCC, 0xDD},
		},
	}

	data, err := json.Marshal(original)

	require.NoError(t, err)

	var parsed TestStruct
	err = json.Unmarshal(data, &parsed)

	require.NoError(t, err)

	assert.Equal(t, original.ID, parsed.ID)
	assert.Equal(t, original.Data, parsed.Data)
	assert.Equal(t, original.Status, parsed.Status)
	assert.Equal(t, original.List, parsed.List)
}

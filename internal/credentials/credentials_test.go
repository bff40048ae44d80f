package credentials

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequired(t *testing.T) {
	assert.Equal(t, []string{"SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY"}, Required())

	seen := map[string]bool{}
	for _, name := range Required() {
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate required name %s", name)
		seen[name] = true
	}
}

func TestRequired_ReturnsCopy(t *testing.T) {
	got := Required()
	got[0] = "CHANGED"

	assert.Equal(t, []string{EnvURL, EnvServiceRoleKey}, Required())
	assert.True(t, Missing(MapEnv{EnvURL: "u"}))
	assert.False(t, Missing(MapEnv{EnvURL: "u", EnvServiceRoleKey: "k"}))
}

func TestMissingAtLoad_MatchesFlag(t *testing.T) {
	names := MissingAtLoad()
	assert.Equal(t, MissingCredentials, len(names) > 0)

	if len(names) > 0 {
		names[0] = "CHANGED"
		assert.NotEqual(t, "CHANGED", MissingAtLoad()[0])
	}
}

func TestMissing_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		env  MapEnv
		want bool
	}{
		{
			name: "neither set",
			env:  MapEnv{},
			want: true,
		},
		{
			name: "url only",
			env:  MapEnv{EnvURL: "https://x.test"},
			want: true,
		},
		{
			name: "key only",
			env:  MapEnv{EnvServiceRoleKey: "secret"},
			want: true,
		},
		{
			name: "both set",
			env:  MapEnv{EnvURL: "https://x.test", EnvServiceRoleKey: "service-role-secret"},
			want: false,
		},
		{
			name: "empty key still counts as present",
			env:  MapEnv{EnvURL: "https://x.test", EnvServiceRoleKey: ""},
			want: false,
		},
		{
			name: "both empty",
			env:  MapEnv{EnvURL: "", EnvServiceRoleKey: ""},
			want: false,
		},
		{
			name: "unrelated variables ignored",
			env:  MapEnv{"SUPABASE_ANON_KEY": "anon", "HOME": "/root"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Missing(tt.env))
		})
	}
}

func TestMissing_EveryStrictSubset(t *testing.T) {
	// Every subset that leaves out at least one required name must report missing.
	names := Required()
	n := len(names)
	for mask := 0; mask < (1<<n)-1; mask++ {
		env := MapEnv{}
		for i, name := range names {
			if mask&(1<<i) != 0 {
				env[name] = "value"
			}
		}
		assert.True(t, Missing(env), "mask %b", mask)
	}
}

func TestMissing_Idempotent(t *testing.T) {
	env := MapEnv{EnvURL: "https://x.test"}
	first := Missing(env)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Missing(env))
	}
}

func TestMissing_Concurrent(t *testing.T) {
	env := MapEnv{EnvURL: "https://x.test", EnvServiceRoleKey: "k"}

	var wg sync.WaitGroup
	results := make([]bool, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Missing(env)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.False(t, r)
	}
}

func TestMissing_OSEnv(t *testing.T) {
	t.Setenv(EnvURL, "https://x.test")
	t.Setenv(EnvServiceRoleKey, "")

	assert.False(t, Missing(OSEnv{}))
}

func TestMissingNames(t *testing.T) {
	assert.Equal(t, []string{EnvURL, EnvServiceRoleKey}, MissingNames(MapEnv{}))
	assert.Equal(t, []string{EnvServiceRoleKey}, MissingNames(MapEnv{EnvURL: "https://x.test"}))
	assert.Empty(t, MissingNames(MapEnv{EnvURL: "", EnvServiceRoleKey: ""}))
}

func TestCheck(t *testing.T) {
	t.Run("all present", func(t *testing.T) {
		assert.NoError(t, Check(MapEnv{EnvURL: "u", EnvServiceRoleKey: "k"}))
	})

	t.Run("lists missing names in order", func(t *testing.T) {
		err := Check(MapEnv{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingCredentials))
		assert.Contains(t, err.Error(), "SUPABASE_URL, SUPABASE_SERVICE_ROLE_KEY")
	})
}

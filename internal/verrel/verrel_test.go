package verrel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		nvr     string
		name    string
		version string
		release string
	}{
		{"qemu-8.1.0-1.fc40", "qemu", "8.1.0", "1.fc40"},
		{"virt-manager-4.1.0-2.fc39", "virt-manager", "4.1.0", "2.fc39"},
		{"edk2-20230524-3.fc39", "edk2", "20230524", "3.fc39"},
		{"libvirt-python-9.0.0-1.fc38", "libvirt-python", "9.0.0", "1.fc38"},
	}

	for _, c := range cases {
		name, vr, err := Parse(c.nvr)
		require.NoError(t, err)
		assert.Equal(t, c.name, name)
		assert.Equal(t, c.version, vr.Version)
		assert.Equal(t, c.release, vr.Release)
	}
}

func TestParseMalformed(t *testing.T) {
	for _, nvr := range []string{"", "qemu", "qemu-8.1.0", "-1-2"} {
		_, _, err := Parse(nvr)
		assert.Error(t, err, "nvr %q", nvr)
	}
}

func TestStripDist(t *testing.T) {
	vr, err := Verrel{Version: "8.1.0", Release: "1.fc40"}.StripDist()
	require.NoError(t, err)
	assert.Equal(t, "1", vr.Release)

	// no dist tag is an error, never a silent pass-through
	_, err = Verrel{Version: "8.1.0", Release: "1"}.StripDist()
	assert.Error(t, err)
	_, err = Verrel{Version: "8.1.0", Release: "1.el9"}.StripDist()
	assert.Error(t, err)
}

func TestStripEpoch(t *testing.T) {
	vr := Verrel{Version: "2:8.1.0", Release: "1"}.StripEpoch()
	assert.Equal(t, "8.1.0", vr.Version)

	// stripping an epoch-free version is a no-op, and idempotent
	vr = vr.StripEpoch()
	assert.Equal(t, "8.1.0", vr.Version)
}

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		// numeric segments compare numerically, not lexically
		{"2.9", "2.10", -1},
		{"9", "10", -1},
		{"1.05", "1.5", 0},
		{"1.0010", "1.9", 1},
		{"2.50", "2.5", 1},
		// alphabetic segments compare lexically
		{"1.0a", "1.0b", -1},
		{"alpha", "beta", -1},
		// numeric outranks alphabetic at the same position
		{"1.1", "1.a", 1},
		// longer remaining string is newer
		{"1.0", "1.0.1", -1},
		{"1.0", "1.0", 0},
		// separators only delimit
		{"1.0.1", "1_0_1", 0},
		// tilde sorts before everything, including end-of-string
		{"1.0~rc1", "1.0", -1},
		{"1.0~rc1", "1.0~rc2", -1},
		{"1.0~~", "1.0~", -1},
		// caret sorts after end-of-string but before real segments
		{"1.0^post1", "1.0", 1},
		{"1.0^post1", "1.0.1", -1},
		{"1.0^", "1.0^post1", -1},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Compare(c.a, c.b), "Compare(%q, %q)", c.a, c.b)
		assert.Equal(t, -c.want, Compare(c.b, c.a), "Compare(%q, %q)", c.b, c.a)
	}
}

func TestOlderThan(t *testing.T) {
	older := Verrel{Version: "2.9", Release: "1"}
	newer := Verrel{Version: "2.10", Release: "1"}
	assert.True(t, older.OlderThan(newer))
	assert.False(t, newer.OlderThan(older))
	assert.False(t, newer.OlderThan(newer))

	// same version, release decides
	relOld := Verrel{Version: "2.10", Release: "1"}
	relNew := Verrel{Version: "2.10", Release: "2"}
	assert.True(t, relOld.OlderThan(relNew))

	// built 1:2.5-3.fc32 vs registry 2.5-3.fc33: after dist and epoch
	// stripping both reduce to 2.5-3, so the build is current
	built, err := Verrel{Version: "1:2.5", Release: "3.fc32"}.StripDist()
	require.NoError(t, err)
	built = built.StripEpoch()
	latest, err := Verrel{Version: "2.5", Release: "3.fc33"}.StripDist()
	require.NoError(t, err)
	assert.False(t, built.OlderThan(latest))
	assert.False(t, latest.OlderThan(built))
}

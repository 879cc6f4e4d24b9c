package rebuild_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fedora-virt/copr-rebuild/internal/rebuild"
)

func TestFilterActive(t *testing.T) {
	filter := rebuild.NewFilter([]*regexp.Regexp{
		regexp.MustCompile(`fedora-3[0-8]-.*`),
		regexp.MustCompile(`epel-.*`),
	}, nil)

	active := filter.Active([]string{
		"fedora-38-x86_64",
		"fedora-39-x86_64",
		"fedora-rawhide-x86_64",
		"epel-9-x86_64",
		"fedora-39-aarch64",
	})

	// end-of-life chroots pruned, order preserved
	assert.Equal(t, []string{
		"fedora-39-x86_64",
		"fedora-rawhide-x86_64",
		"fedora-39-aarch64",
	}, active)
}

func TestFilterExcluded(t *testing.T) {
	assert := assert.New(t)

	filter := rebuild.NewFilter(nil, []rebuild.Package{
		{
			Name: "edk2",
			ExcludeChroots: []*regexp.Regexp{
				regexp.MustCompile(`.*-i386`),
				regexp.MustCompile(`.*-s390x`),
			},
		},
		{Name: "qemu"},
	})

	assert.True(filter.Excluded("edk2", "fedora-rawhide-i386"))
	assert.True(filter.Excluded("edk2", "fedora-40-s390x"))
	assert.False(filter.Excluded("edk2", "fedora-rawhide-x86_64"))
	assert.False(filter.Excluded("qemu", "fedora-rawhide-i386"))
	assert.False(filter.Excluded("unknown", "fedora-rawhide-i386"))
}

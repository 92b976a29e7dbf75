package buildinfo

import (
	"fmt"
	"os"
	"strings"

	"github.com/byte4ever/vcs_utils/vcs"
)

// Property keys read by FromProperties.
const (
	KeyBuildTypeID   = "teamcity.buildType.id"
	KeyBuildTypeName = "teamcity.buildConfName"
	KeyBuildNumber   = "build.number"
	KeyProjectName   = "teamcity.projectName"
)

// Load reads property files and merges them into a
// single map. Blank lines and lines starting with '#'
// or '!' are skipped, as are lines without a
// separator.
func Load(files []string) (map[string]string, error) {
	const errCtx = "loading build properties"

	props := make(map[string]string)

	for _, pf := range files {
		content, err := os.ReadFile(pf) //nolint:gosec // paths from CLI flags
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		for _, line := range strings.Split(string(content), "\n") {
			key, val, ok := splitLine(line)
			if ok {
				props[key] = val
			}
		}
	}

	return props, nil
}

func splitLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' || line[0] == '!' {
		return "", "", false
	}

	i := strings.IndexAny(line, "= ")
	if i <= 0 {
		return "", "", false
	}

	key := line[:i]
	val := strings.TrimSpace(line[i+1:])
	if line[i] == ' ' {
		// "key = value"
		val = strings.TrimSpace(strings.TrimPrefix(val, "="))
	}

	// Java properties escape ':' and '=' in values.
	val = strings.NewReplacer(`\:`, ":", `\=`, "=", `\\`, `\`).
		Replace(val)

	return key, val, true
}

// FromProperties builds a vcs.Build from props. The
// full name is "<project> :: <build type>" when both
// are known.
func FromProperties(props map[string]string) vcs.Build {
	b := vcs.Build{
		TypeID:   props[KeyBuildTypeID],
		TypeName: props[KeyBuildTypeName],
		ID:       props[KeyBuildNumber],
	}

	switch project := props[KeyProjectName]; {
	case project != "" && b.TypeName != "":
		b.Name = project + " :: " + b.TypeName
	case project != "":
		b.Name = project
	default:
		b.Name = b.TypeName
	}

	return b
}

// Merge returns base with every non-empty field of
// override applied.
func Merge(base vcs.Build, override vcs.Build) vcs.Build {
	if override.TypeID != "" {
		base.TypeID = override.TypeID
	}

	if override.TypeName != "" {
		base.TypeName = override.TypeName
	}

	if override.ID != "" {
		base.ID = override.ID
	}

	if override.Name != "" {
		base.Name = override.Name
	}

	return base
}

package cmd

import (
	"testing"
)

func TestVersion_PrintsBuildTag(t *testing.T) {
	env := newTestEnv(t)

	out := env.run("version")
	env.contains(out, "Build Tag:")
}

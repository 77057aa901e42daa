package cmd

import (
	"testing"
)

func TestPolicyShow_PrintsDefaults(t *testing.T) {
	env := newTestEnv(t)

	out := env.run("policy", "show")
	env.contains(out, "previewAlways")
	env.contains(out, "reconcileCooldownMs")
}

func TestPolicySetSize_PersistsOverride(t *testing.T) {
	env := newTestEnv(t)

	env.run("policy", "set-size", "--max-bytes-hard-limit", "1048576")

	out := env.run("policy", "show")
	env.contains(out, "maxBytesHardLimit=1048576")
}

func TestPolicySetRefresh_PersistsOverride(t *testing.T) {
	env := newTestEnv(t)

	env.run("policy", "set-refresh", "--max-concurrent-reconciles", "4")

	out := env.run("policy", "show")
	env.contains(out, "maxConcurrentReconciles=4")
}

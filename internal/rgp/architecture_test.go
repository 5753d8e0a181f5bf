package rgp

import (
	"testing"

	"panrgp/testutil"
)

func TestDetectionHasNoBackendDependencies(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.ServiceImportForbidden, "detection runs on plain domain values")
	testutil.AssertNoTransitiveDependency(t, ".", testutil.BackendDependencyForbidden, "detection must not link storage or metrics backends")
}

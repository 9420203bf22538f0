package core

import "path"

// WorkflowsDir is where GitHub looks for workflow files, relative to the repo root.
const WorkflowsDir = ".github/workflows"

// SingleWorkflowPath is the publish workflow location for single-crate repositories.
const SingleWorkflowPath = WorkflowsDir + "/publish.yml"

// WorkflowPath returns the publish workflow location for one member of a
// multi-crate workspace: ".github/workflows/publish-<slug>.yml".
func WorkflowPath(packageName string) string {
	return path.Join(WorkflowsDir, "publish-"+Slugify(packageName)+".yml")
}

// TagPattern returns the release tag glob that triggers publishing of
// packageName, e.g. "vm-memory-v*" matches "vm-memory-v0.16.1".
func TagPattern(packageName string) string {
	return packageName + "-v*"
}

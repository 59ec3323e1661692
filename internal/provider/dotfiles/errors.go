package dotfiles

import "fmt"

// TargetExistsError reports a clone destination occupied by something
// other than the requested repository. The run can be retried with
// --force to replace the directory.
type TargetExistsError struct {
	Path string
}

func (e *TargetExistsError) Error() string {
	return fmt.Sprintf("clone target %s already exists; re-run with --force to replace it", e.Path)
}

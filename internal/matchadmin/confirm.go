// internal/matchadmin/confirm.go
package matchadmin

import "fmt"

// ConfirmToken names a destructive action the caller must explicitly
// acknowledge. Commands that need acknowledgement fail with a
// *ConfirmationRequiredError carrying the token; the caller resubmits the
// same command echoing that token back.
type ConfirmToken string

const (
	ConfirmDeleteTeam     ConfirmToken = "delete-team"
	ConfirmFinishResult   ConfirmToken = "finish-result"
	ConfirmUpdateFinished ConfirmToken = "update-finished-result"
	ConfirmUnlockResult   ConfirmToken = "unlock-result"
)

// ConfirmationRequiredError is the "needs confirmation" result of a
// confirmation-gated command. No remote call has been made when it is
// returned.
type ConfirmationRequiredError struct {
	Token  ConfirmToken
	Prompt string
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("confirmation required (%s): %s", e.Token, e.Prompt)
}

func needsConfirmation(got, want ConfirmToken, prompt string) error {
	if got == want {
		return nil
	}
	return &ConfirmationRequiredError{Token: want, Prompt: prompt}
}

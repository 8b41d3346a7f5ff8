// Package action validates player submissions against a game snapshot.
//
// Validators never touch storage. Each accepted request becomes exactly one
// log entry; everything else becomes a *Rejection carrying a stable code and
// a message that is safe to show the caller.
package action

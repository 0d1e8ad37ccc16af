package authz

// CanModify reports whether callerID may update or delete a task owned by
// ownerID. Guest tasks (no owner) stay open to everyone, and with enforcement
// off every caller may modify every task.
func CanModify(ownerID *string, callerID string, enforce bool) bool {
	if !enforce || ownerID == nil || *ownerID == "" {
		return true
	}
	return callerID != "" && *ownerID == callerID
}

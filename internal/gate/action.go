package gate

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView    Action = "view"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionList    Action = "list"
	ActionFlag    Action = "flag"
	ActionCascade Action = "cascade"
)

// AdvanceAction builds the stage-qualified transition action, e.g.
// "advance:MONTAGE". Granting "commande:advance:*" via the resource
// wildcard is not possible, so profiles list the stages they may trigger
// explicitly (or hold the resource-wide "commande:*").
func AdvanceAction(etape string) Action {
	return Action("advance:" + etape)
}

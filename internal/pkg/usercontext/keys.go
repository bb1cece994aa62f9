package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	KeyUserContext  = "USER_CONTEXT"
	KeyProfileID    = "profile_id"
	KeyName         = "name"
	KeyAccountType  = "account_type"
	KeyPlanDecision = "plan_decision"
)

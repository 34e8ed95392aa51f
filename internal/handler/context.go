package handler

type ContextKey string

var (
	RoleCtxKey     ContextKey = "role"
	SubCtxKey      ContextKey = "sub"
	MyInfoCtx      ContextKey = "myInfo"
	UserInfoCtx    ContextKey = "userInfo"
	CourseCtx      ContextKey = "course"
	LocationCtx    ContextKey = "location"
	ScheduleRunCtx ContextKey = "scheduleRun"
)

package router

import "net/http"

// RouteID identifica cada endpoint de la API. La tabla routes es la única
// fuente de método+path; NewRouter exige un handler por cada RouteID.
type RouteID int

const (
	RouteHealth RouteID = iota
	RouteCatsList
	RouteCatsCreate
	RouteCatGet
	RouteCatUpdate
	RouteCatDelete
	RouteCatAccess
	RouteCaregiversRoster
	RouteCaregiverAssign
	RouteCaregiverUnassign
	RouteActivitiesUpcoming
	RouteActivityCreate
	RouteActivityUpdate
	RouteActivityCancel
	RoutePhotosList
	RoutePhotoUpload
	RoutePhotosReorder
	RoutePhotoDelete
	RouteActivitiesSearch
	RouteActivitiesDashboard
	RouteCalendarRange
	RouteCalendarDay
	RouteAdminUsersList
	RouteAdminUserCreate
	RouteAdminUserUpdate
	RouteAdminUserBlock
	RouteAdminUserDelete
	RouteAdminStats
	RouteCatAvatar
	RouteMe
	RouteMeUpdate
	RouteMeAvatar
	RouteRegister

	routeCount
)

type Route struct {
	ID      RouteID
	Method  string
	Pattern string
	// Public: no requiere identidad.
	Public bool
}

var routes = [...]Route{
	{RouteHealth, http.MethodGet, "/health", true},
	{RouteCatsList, http.MethodGet, "/cats", false},
	{RouteCatsCreate, http.MethodPost, "/cats", false},
	{RouteCatGet, http.MethodGet, "/cats/{catID}", false},
	{RouteCatUpdate, http.MethodPut, "/cats/{catID}", false},
	{RouteCatDelete, http.MethodDelete, "/cats/{catID}", false},
	{RouteCatAccess, http.MethodGet, "/cats/{catID}/access", false},
	{RouteCaregiversRoster, http.MethodGet, "/cats/{catID}/caregivers", false},
	{RouteCaregiverAssign, http.MethodPost, "/cats/{catID}/caregivers", false},
	{RouteCaregiverUnassign, http.MethodDelete, "/cats/{catID}/caregivers/{userID}", false},
	{RouteActivitiesUpcoming, http.MethodGet, "/cats/{catID}/activities", false},
	{RouteActivityCreate, http.MethodPost, "/cats/{catID}/activities", false},
	{RouteActivityUpdate, http.MethodPut, "/cats/{catID}/activities/{activityID}", false},
	{RouteActivityCancel, http.MethodPost, "/cats/{catID}/activities/{activityID}/cancel", false},
	{RoutePhotosList, http.MethodGet, "/cats/{catID}/photos", false},
	{RoutePhotoUpload, http.MethodPost, "/cats/{catID}/photos", false},
	{RoutePhotosReorder, http.MethodPut, "/cats/{catID}/photos/order", false},
	{RoutePhotoDelete, http.MethodDelete, "/cats/{catID}/photos/{photoID}", false},
	{RouteActivitiesSearch, http.MethodGet, "/activities", false},
	{RouteActivitiesDashboard, http.MethodGet, "/activities/dashboard", false},
	{RouteCalendarRange, http.MethodGet, "/calendar", false},
	{RouteCalendarDay, http.MethodGet, "/calendar/day", false},
	{RouteAdminUsersList, http.MethodGet, "/admin/users", false},
	{RouteAdminUserCreate, http.MethodPost, "/admin/users", false},
	{RouteAdminUserUpdate, http.MethodPut, "/admin/users/{userID}", false},
	{RouteAdminUserBlock, http.MethodPost, "/admin/users/{userID}/block", false},
	{RouteAdminUserDelete, http.MethodDelete, "/admin/users/{userID}", false},
	{RouteAdminStats, http.MethodGet, "/admin/stats", false},
	{RouteCatAvatar, http.MethodPost, "/cats/{catID}/avatar", false},
	{RouteMe, http.MethodGet, "/me", false},
	{RouteMeUpdate, http.MethodPut, "/me", false},
	{RouteMeAvatar, http.MethodPost, "/me/avatar", false},
	{RouteRegister, http.MethodPost, "/register", true},
}

// Routes devuelve una copia de la tabla (docs y tests).
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes[:])
	return out
}

package web

import (
	"net/http"

	"fitstudio/internal/adapters/http/middleware"
	"fitstudio/internal/domain/account"
)

var (
	requireStaff  = middleware.RequireRole(account.RoleAdmin, account.RoleTrainer)
	requireAdmin  = middleware.RequireRole(account.RoleAdmin)
	requireClient = middleware.RequireRole(account.RoleClient)
)

func staffOnly(h http.HandlerFunc) http.Handler  { return requireStaff(h) }
func adminOnly(h http.HandlerFunc) http.Handler  { return requireAdmin(h) }
func clientOnly(h http.HandlerFunc) http.Handler { return requireClient(h) }

// registerRoutes maps every endpoint. Public routes are registered bare;
// everything else is wrapped in a role check.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", services.Metrics.Handler())
	mux.HandleFunc("GET /api/csrf", handleCSRFToken)

	// Auth
	mux.HandleFunc("POST /api/auth/login", handleLogin)
	mux.HandleFunc("POST /api/auth/logout", handleLogout)
	mux.Handle("GET /api/auth/me", middleware.RequireAuth(http.HandlerFunc(handleMe)))
	mux.Handle("POST /api/auth/password", middleware.RequireAuth(http.HandlerFunc(handlePasswordChange)))
	mux.Handle("GET /api/accounts", adminOnly(handleListAccounts))
	mux.Handle("POST /api/accounts", adminOnly(handleCreateAccount))

	// Leads
	mux.HandleFunc("POST /api/leads", handleCreateLead)
	mux.Handle("GET /api/leads", staffOnly(handleListLeads))
	mux.Handle("GET /api/leads/{id}", staffOnly(handleGetLead))
	mux.Handle("PATCH /api/leads/{id}", staffOnly(handleUpdateLead))
	mux.Handle("DELETE /api/leads/{id}", staffOnly(handleDeleteLead))
	mux.Handle("POST /api/leads/{id}/convert", staffOnly(handleConvertLead))
	mux.Handle("POST /api/leads/{id}/reply-draft", staffOnly(handleLeadReplyDraft))

	// Clients
	mux.Handle("GET /api/clients", staffOnly(handleListClients))
	mux.Handle("POST /api/clients", staffOnly(handleCreateClient))
	mux.Handle("GET /api/clients/{id}", staffOnly(handleGetClient))
	mux.Handle("PATCH /api/clients/{id}", staffOnly(handleUpdateClient))
	mux.Handle("DELETE /api/clients/{id}", staffOnly(handleDeleteClient))

	// Booking
	mux.HandleFunc("GET /api/booking/slots", handleBookingSlots)
	mux.HandleFunc("POST /api/booking", handleBookSlot)

	// Appointments
	mux.Handle("GET /api/appointments", staffOnly(handleListAppointments))
	mux.Handle("POST /api/appointments", staffOnly(handleCreateAppointment))
	mux.Handle("GET /api/appointments/{id}", staffOnly(handleGetAppointment))
	mux.Handle("PATCH /api/appointments/{id}", staffOnly(handleUpdateAppointment))
	mux.Handle("DELETE /api/appointments/{id}", staffOnly(handleDeleteAppointment))

	// Recurring sessions
	mux.Handle("GET /api/recurring-sessions", staffOnly(handleListRecurring))
	mux.Handle("POST /api/recurring-sessions", staffOnly(handleCreateRecurring))
	mux.Handle("POST /api/recurring-sessions/generate", staffOnly(handleGenerateRecurring))
	mux.Handle("PATCH /api/recurring-sessions/{id}", staffOnly(handleUpdateRecurring))
	mux.Handle("DELETE /api/recurring-sessions/{id}", staffOnly(handleDeleteRecurring))

	// Attendance
	mux.Handle("GET /api/attendance", staffOnly(handleListAttendance))
	mux.Handle("POST /api/attendance/check-in", staffOnly(handleCheckIn))
	mux.Handle("POST /api/attendance/{id}/check-out", staffOnly(handleCheckOut))

	// Workouts
	mux.Handle("GET /api/workout-plans", staffOnly(handleListWorkoutPlans))
	mux.Handle("POST /api/workout-plans", staffOnly(handleCreateWorkoutPlan))
	mux.Handle("GET /api/workout-plans/{id}", staffOnly(handleGetWorkoutPlan))
	mux.Handle("DELETE /api/workout-plans/{id}", staffOnly(handleDeleteWorkoutPlan))
	mux.Handle("POST /api/workout-plans/{id}/assign", staffOnly(handleAssignWorkoutPlan))
	mux.Handle("GET /api/workout-logs", staffOnly(handleListWorkoutLogs))
	mux.Handle("POST /api/workout-logs", staffOnly(handleLogWorkout))

	// Nutrition
	mux.Handle("GET /api/meal-plans", staffOnly(handleListMealPlans))
	mux.Handle("POST /api/meal-plans", staffOnly(handleCreateMealPlan))
	mux.Handle("GET /api/meal-plans/{id}", staffOnly(handleGetMealPlan))
	mux.Handle("DELETE /api/meal-plans/{id}", staffOnly(handleDeleteMealPlan))
	mux.Handle("POST /api/meal-plans/{id}/assign", staffOnly(handleAssignMealPlan))
	mux.Handle("GET /api/food-logs", staffOnly(handleListFoodLogs))
	mux.Handle("POST /api/food-logs", staffOnly(handleLogFood))

	// Events
	mux.HandleFunc("GET /api/events", handleListEvents)
	mux.Handle("POST /api/events", staffOnly(handleCreateEvent))
	mux.HandleFunc("GET /api/events/{id}", handleGetEvent)
	mux.Handle("PATCH /api/events/{id}", staffOnly(handleUpdateEvent))
	mux.Handle("DELETE /api/events/{id}", staffOnly(handleDeleteEvent))
	mux.HandleFunc("POST /api/events/{id}/register", handleRegisterForEvent)
	mux.Handle("GET /api/events/{id}/registrations", staffOnly(handleListRegistrations))

	// Payments
	mux.Handle("GET /api/payments", staffOnly(handleListPayments))
	mux.HandleFunc("POST /api/payments/webhook", handlePaymentWebhook)
	mux.Handle("POST /api/payments/{id}/mark-paid", staffOnly(handleMarkPaymentPaid))

	// AI drafting
	mux.Handle("POST /api/ai/caption", staffOnly(handleDraftCaption))
	mux.Handle("POST /api/ai/workout-plan", staffOnly(handleDraftWorkoutPlan))

	// Client portal
	mux.Handle("GET /api/portal/me", clientOnly(handlePortal))
	mux.Handle("POST /api/portal/workout-logs", clientOnly(handlePortalLogWorkout))
	mux.Handle("POST /api/portal/food-logs", clientOnly(handlePortalLogFood))

	// Staff dashboard and admin
	mux.Handle("GET /api/dashboard", staffOnly(handleDashboard))
	mux.Handle("GET /api/admin/outbox", adminOnly(handleListOutbox))
	mux.Handle("POST /api/admin/outbox/{id}/retry", adminOnly(handleRetryOutbox))
	mux.Handle("POST /api/admin/outbox/{id}/abandon", adminOnly(handleAbandonOutbox))
}

package web

import (
	"time"

	"fitstudio/internal/application/orchestrators"
	"fitstudio/internal/application/projections"
	"fitstudio/internal/domain/account"
	"fitstudio/internal/domain/appointment"
	"fitstudio/internal/domain/attendance"
	"fitstudio/internal/domain/client"
	"fitstudio/internal/domain/event"
	"fitstudio/internal/domain/lead"
	"fitstudio/internal/domain/nutrition"
	"fitstudio/internal/domain/outbox"
	"fitstudio/internal/domain/payment"
	"fitstudio/internal/domain/recurring"
	"fitstudio/internal/domain/workout"
)

// JSON views of domain values. Domain types stay free of wire tags.

type accountView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	ClientID  string    `json:"client_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountView(a account.Account) accountView {
	return accountView{ID: a.ID, Email: a.Email, Name: a.Name, Role: a.Role, ClientID: a.ClientID, CreatedAt: a.CreatedAt}
}

type leadView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Message     string    `json:"message,omitempty"`
	Goal        string    `json:"goal,omitempty"`
	Source      string    `json:"source"`
	UTMSource   string    `json:"utm_source,omitempty"`
	UTMMedium   string    `json:"utm_medium,omitempty"`
	UTMCampaign string    `json:"utm_campaign,omitempty"`
	UTMTerm     string    `json:"utm_term,omitempty"`
	UTMContent  string    `json:"utm_content,omitempty"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	ClientID    string    `json:"client_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toLeadView(l lead.Lead) leadView {
	return leadView{
		ID:          l.ID,
		Name:        l.Name,
		Email:       l.Email,
		Phone:       l.Phone,
		Message:     l.Message,
		Goal:        l.Goal,
		Source:      l.Source,
		UTMSource:   l.UTMSource,
		UTMMedium:   l.UTMMedium,
		UTMCampaign: l.UTMCampaign,
		UTMTerm:     l.UTMTerm,
		UTMContent:  l.UTMContent,
		Status:      l.Status,
		Notes:       l.Notes,
		ClientID:    l.ClientID,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

type clientView struct {
	ID          string    `json:"id"`
	LeadID      string    `json:"lead_id,omitempty"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Goal        string    `json:"goal,omitempty"`
	Program     string    `json:"program,omitempty"`
	StartDate   string    `json:"start_date,omitempty"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toClientView(c client.Client) clientView {
	return clientView{
		ID:          c.ID,
		LeadID:      c.LeadID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		DateOfBirth: c.DateOfBirth,
		Gender:      c.Gender,
		Goal:        c.Goal,
		Program:     c.Program,
		StartDate:   c.StartDate,
		Status:      c.Status,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type appointmentView struct {
	ID                 string    `json:"id"`
	ClientID           string    `json:"client_id,omitempty"`
	Date               string    `json:"date"`
	StartTime          string    `json:"start_time"`
	EndTime            string    `json:"end_time"`
	Type               string    `json:"type"`
	Status             string    `json:"status"`
	Notes              string    `json:"notes,omitempty"`
	RecurringSessionID string    `json:"recurring_session_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toAppointmentView(a appointment.Appointment) appointmentView {
	return appointmentView{
		ID:                 a.ID,
		ClientID:           a.ClientID,
		Date:               a.Date,
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		Type:               a.Type,
		Status:             a.Status,
		Notes:              a.Notes,
		RecurringSessionID: a.RecurringSessionID,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

type recurringView struct {
	ID              string    `json:"id"`
	ClientID        string    `json:"client_id"`
	DaysOfWeek      []int     `json:"days_of_week"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Type            string    `json:"type"`
	Notes           string    `json:"notes,omitempty"`
	Active          bool      `json:"active"`
	StartDate       string    `json:"start_date,omitempty"`
	EndDate         string    `json:"end_date,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toRecurringView(s recurring.Session) recurringView {
	end, _ := s.EndTime()
	return recurringView{
		ID:              s.ID,
		ClientID:        s.ClientID,
		DaysOfWeek:      s.DaysOfWeek,
		StartTime:       s.StartTime,
		EndTime:         end,
		DurationMinutes: s.DurationMinutes,
		Type:            s.Type,
		Notes:           s.Notes,
		Active:          s.Active,
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		CreatedAt:       s.CreatedAt,
	}
}

type attendanceView struct {
	ID              string     `json:"id"`
	ClientID        string     `json:"client_id"`
	AppointmentID   string     `json:"appointment_id,omitempty"`
	CheckInTime     time.Time  `json:"check_in_time"`
	CheckOutTime    *time.Time `json:"check_out_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Notes           string     `json:"notes,omitempty"`
}

func toAttendanceView(l attendance.Log) attendanceView {
	v := attendanceView{
		ID:              l.ID,
		ClientID:        l.ClientID,
		AppointmentID:   l.AppointmentID,
		CheckInTime:     l.CheckInTime,
		DurationMinutes: int(l.Duration(timeNow()).Minutes()),
		Notes:           l.Notes,
	}
	if !l.IsOpen() {
		out := l.CheckOutTime
		v.CheckOutTime = &out
	}
	return v
}

type exerciseView struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name" validate:"required,max=120"`
	Sets        int    `json:"sets" validate:"gte=0"`
	Reps        string `json:"reps,omitempty" validate:"max=20"`
	RestSeconds int    `json:"rest_seconds,omitempty" validate:"gte=0"`
	Notes       string `json:"notes,omitempty" validate:"max=500"`
	Position    int    `json:"position"`
}

type dayView struct {
	ID        string         `json:"id,omitempty"`
	DayNumber int            `json:"day_number" validate:"gte=1"`
	Title     string         `json:"title" validate:"max=120"`
	Exercises []exerciseView `json:"exercises" validate:"dive"`
}

type workoutPlanView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Level       string    `json:"level"`
	CreatedBy   string    `json:"created_by,omitempty"`
	Days        []dayView `json:"days"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toWorkoutPlanView(p workout.Plan) workoutPlanView {
	v := workoutPlanView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Level:       p.Level,
		CreatedBy:   p.CreatedBy,
		Days:        make([]dayView, 0, len(p.Days)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, d := range p.Days {
		dv := dayView{ID: d.ID, DayNumber: d.DayNumber, Title: d.Title, Exercises: make([]exerciseView, 0, len(d.Exercises))}
		for _, e := range d.Exercises {
			dv.Exercises = append(dv.Exercises, exerciseView{
				ID:          e.ID,
				Name:        e.Name,
				Sets:        e.Sets,
				Reps:        e.Reps,
				RestSeconds: e.RestSeconds,
				Notes:       e.Notes,
				Position:    e.Position,
			})
		}
		v.Days = append(v.Days, dv)
	}
	return v
}

// toWorkoutDays converts request days to domain days. IDs and positions are assigned on save.
func toWorkoutDays(days []dayView) []workout.Day {
	out := make([]workout.Day, 0, len(days))
	for _, d := range days {
		day := workout.Day{DayNumber: d.DayNumber, Title: d.Title}
		for _, e := range d.Exercises {
			day.Exercises = append(day.Exercises, workout.Exercise{
				Name:        e.Name,
				Sets:        e.Sets,
				Reps:        e.Reps,
				RestSeconds: e.RestSeconds,
				Notes:       e.Notes,
			})
		}
		out = append(out, day)
	}
	return out
}

type workoutAssignmentView struct {
	ID        string    `json:"id"`
	PlanID    string    `json:"plan_id"`
	ClientID  string    `json:"client_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toWorkoutAssignmentView(a workout.Assignment) workoutAssignmentView {
	return workoutAssignmentView{ID: a.ID, PlanID: a.PlanID, ClientID: a.ClientID, StartDate: a.StartDate, EndDate: a.EndDate, Active: a.Active, CreatedAt: a.CreatedAt}
}

type workoutLogView struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	PlanID      string    `json:"plan_id"`
	DayID       string    `json:"day_id,omitempty"`
	ExerciseID  string    `json:"exercise_id,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
	Notes       string    `json:"notes,omitempty"`
}

func toWorkoutLogView(l workout.CompletionLog) workoutLogView {
	return workoutLogView{ID: l.ID, ClientID: l.ClientID, PlanID: l.PlanID, DayID: l.DayID, ExerciseID: l.ExerciseID, CompletedAt: l.CompletedAt, Notes: l.Notes}
}

type mealItemView struct {
	ID       string  `json:"id,omitempty"`
	Meal     string  `json:"meal" validate:"required,oneof=breakfast lunch dinner snack"`
	Name     string  `json:"name" validate:"required,max=120"`
	Quantity string  `json:"quantity,omitempty" validate:"max=60"`
	Calories int     `json:"calories" validate:"gte=0"`
	ProteinG float64 `json:"protein_g" validate:"gte=0"`
	CarbsG   float64 `json:"carbs_g" validate:"gte=0"`
	FatG     float64 `json:"fat_g" validate:"gte=0"`
	Position int     `json:"position"`
}

type macrosView struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

func toMacrosView(m nutrition.Macros) macrosView {
	return macrosView{Calories: m.Calories, ProteinG: m.ProteinG, CarbsG: m.CarbsG, FatG: m.FatG}
}

type mealPlanView struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	DailyCalories int            `json:"daily_calories"`
	Items         []mealItemView `json:"items"`
	Totals        macrosView     `json:"totals"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func toMealPlanView(p nutrition.Plan) mealPlanView {
	v := mealPlanView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		DailyCalories: p.DailyCalories,
		Items:         make([]mealItemView, 0, len(p.Items)),
		Totals:        toMacrosView(p.Totals()),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	for _, it := range p.Items {
		v.Items = append(v.Items, mealItemView{
			ID:       it.ID,
			Meal:     it.Meal,
			Name:     it.Name,
			Quantity: it.Quantity,
			Calories: it.Calories,
			ProteinG: it.ProteinG,
			CarbsG:   it.CarbsG,
			FatG:     it.FatG,
			Position: it.Position,
		})
	}
	return v
}

func toMealItems(items []mealItemView) []nutrition.Item {
	out := make([]nutrition.Item, 0, len(items))
	for _, it := range items {
		out = append(out, nutrition.Item{
			Meal:     it.Meal,
			Name:     it.Name,
			Quantity: it.Quantity,
			Macros:   nutrition.Macros{Calories: it.Calories, ProteinG: it.ProteinG, CarbsG: it.CarbsG, FatG: it.FatG},
		})
	}
	return out
}

type mealAssignmentView struct {
	ID         string    `json:"id"`
	MealPlanID string    `json:"meal_plan_id"`
	ClientID   string    `json:"client_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

func toMealAssignmentView(a nutrition.Assignment) mealAssignmentView {
	return mealAssignmentView{ID: a.ID, MealPlanID: a.MealPlanID, ClientID: a.ClientID, StartDate: a.StartDate, EndDate: a.EndDate, Active: a.Active, CreatedAt: a.CreatedAt}
}

type foodLogView struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	LoggedAt    time.Time `json:"logged_at"`
	Meal        string    `json:"meal"`
	Description string    `json:"description"`
	macrosView
}

func toFoodLogView(l nutrition.FoodLog) foodLogView {
	return foodLogView{ID: l.ID, ClientID: l.ClientID, LoggedAt: l.LoggedAt, Meal: l.Meal, Description: l.Description, macrosView: toMacrosView(l.Macros)}
}

type eventView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time,omitempty"`
	MaxCapacity int       `json:"max_capacity"`
	FeeAmount   int64     `json:"fee_amount"`
	Currency    string    `json:"currency"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toEventView(e event.Event) eventView {
	return eventView{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		Date:        e.Date,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		MaxCapacity: e.MaxCapacity,
		FeeAmount:   e.FeeAmount,
		Currency:    e.Currency,
		Published:   e.Published,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

type registrationView struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	PaymentID string    `json:"payment_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toRegistrationView(r event.Registration) registrationView {
	return registrationView{ID: r.ID, EventID: r.EventID, Name: r.Name, Email: r.Email, Phone: r.Phone, Status: r.Status, PaymentID: r.PaymentID, CreatedAt: r.CreatedAt}
}

type paymentView struct {
	ID               string    `json:"id"`
	RegistrationID   string    `json:"registration_id"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	Method           string    `json:"method"`
	GatewayOrderID   string    `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string    `json:"gateway_payment_id,omitempty"`
	FailureReason    string    `json:"failure_reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toPaymentView(p payment.Payment) paymentView {
	return paymentView{
		ID:               p.ID,
		RegistrationID:   p.RegistrationID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Status:           p.Status,
		Method:           p.Method,
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: p.GatewayPaymentID,
		FailureReason:    p.FailureReason,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type registrationResultView struct {
	Registration registrationView `json:"registration"`
	Payment      *paymentView     `json:"payment,omitempty"`
	Order        any              `json:"order,omitempty"`
	KeyID        string           `json:"key_id,omitempty"`
}

func toRegistrationResultView(res orchestrators.RegisterForEventResult) registrationResultView {
	v := registrationResultView{Registration: toRegistrationView(res.Registration), KeyID: res.KeyID}
	if res.Payment != nil {
		pv := toPaymentView(*res.Payment)
		v.Payment = &pv
	}
	if res.Order != nil {
		v.Order = res.Order
	}
	return v
}

type outboxView struct {
	ID            string     `json:"id"`
	Channel       string     `json:"channel"`
	Recipient     string     `json:"recipient"`
	Subject       string     `json:"subject,omitempty"`
	Topic         string     `json:"topic,omitempty"`
	Status        string     `json:"status"`
	Attempts      int        `json:"attempts"`
	MaxAttempts   int        `json:"max_attempts"`
	NextAttemptAt time.Time  `json:"next_attempt_at"`
	LastError     string     `json:"last_error,omitempty"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toOutboxView(m outbox.Message) outboxView {
	v := outboxView{
		ID:            m.ID,
		Channel:       m.Channel,
		Recipient:     m.Recipient,
		Subject:       m.Subject,
		Topic:         m.Topic,
		Status:        m.Status,
		Attempts:      m.Attempts,
		MaxAttempts:   m.MaxAttempts,
		NextAttemptAt: m.NextAttemptAt,
		LastError:     m.LastError,
		CreatedAt:     m.CreatedAt,
	}
	if !m.SentAt.IsZero() {
		sent := m.SentAt
		v.SentAt = &sent
	}
	return v
}

type portalView struct {
	Client           clientView        `json:"client"`
	Upcoming         []appointmentView `json:"upcoming"`
	WorkoutPlan      *workoutPlanView  `json:"workout_plan,omitempty"`
	MealPlan         *mealPlanView     `json:"meal_plan,omitempty"`
	RecentAttendance []attendanceView  `json:"recent_attendance"`
	RecentWorkouts   []workoutLogView  `json:"recent_workouts"`
	TodaysFood       []foodLogView     `json:"todays_food"`
	TodaysCalories   int               `json:"todays_calories"`
}

func toPortalView(p projections.GetPortalResult) portalView {
	v := portalView{
		Client:           toClientView(p.Client),
		Upcoming:         mapSlice(p.Upcoming, toAppointmentView),
		RecentAttendance: mapSlice(p.RecentAttendance, toAttendanceView),
		RecentWorkouts:   mapSlice(p.RecentWorkouts, toWorkoutLogView),
		TodaysFood:       mapSlice(p.TodaysFood, toFoodLogView),
		TodaysCalories:   p.TodaysCalories,
	}
	if p.WorkoutPlan != nil {
		wp := toWorkoutPlanView(*p.WorkoutPlan)
		v.WorkoutPlan = &wp
	}
	if p.MealPlan != nil {
		mp := toMealPlanView(*p.MealPlan)
		v.MealPlan = &mp
	}
	return v
}

type dashboardView struct {
	Date               string            `json:"date"`
	NewLeads           int               `json:"new_leads"`
	ActiveClients      int               `json:"active_clients"`
	TodaysAppointments []appointmentView `json:"todays_appointments"`
	OpenCheckIns       int               `json:"open_check_ins"`
	PendingPayments    int               `json:"pending_payments"`
}

func toDashboardView(d projections.DashboardResult) dashboardView {
	return dashboardView{
		Date:               d.Date,
		NewLeads:           d.NewLeads,
		ActiveClients:      d.ActiveClients,
		TodaysAppointments: mapSlice(d.TodaysAppointments, toAppointmentView),
		OpenCheckIns:       d.OpenCheckIns,
		PendingPayments:    d.PendingPayments,
	}
}

// mapSlice converts every element of in, returning an empty (not nil) slice.
func mapSlice[T, V any](in []T, f func(T) V) []V {
	out := make([]V, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

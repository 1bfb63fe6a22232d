package payment

import (
	"testing"
	"time"

	"fitstudio/internal/domain/event"
)

func TestPaymentValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Payment
		wantErr error
	}{
		{"valid", Payment{RegistrationID: "r", Amount: 100, Status: StatusPending, Method: MethodGateway}, nil},
		{"no registration", Payment{Amount: 100, Status: StatusPending, Method: MethodGateway}, ErrEmptyRegistration},
		{"zero amount", Payment{RegistrationID: "r", Status: StatusPending, Method: MethodGateway}, ErrInvalidAmount},
		{"bad status", Payment{RegistrationID: "r", Amount: 1, Status: "paid", Method: MethodGateway}, ErrInvalidStatus},
		{"bad method", Payment{RegistrationID: "r", Amount: 1, Status: StatusPending, Method: "cash"}, ErrInvalidMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.p.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyGatewayEvent(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		from       string
		evt        string
		wantStatus string
		wantReg    string
		wantErr    error
	}{
		{"captured", StatusPending, EventCaptured, StatusCaptured, event.RegistrationConfirmed, nil},
		{"authorized", StatusPending, EventAuthorized, StatusAuthorized, event.RegistrationConfirmed, nil},
		{"authorized after capture", StatusCaptured, EventAuthorized, StatusCaptured, event.RegistrationConfirmed, nil},
		{"failed", StatusPending, EventFailed, StatusFailed, event.RegistrationPaymentFailed, nil},
		{"failed after capture ignored", StatusCaptured, EventFailed, StatusCaptured, event.RegistrationConfirmed, nil},
		{"retry after failure captured", StatusFailed, EventCaptured, StatusCaptured, event.RegistrationConfirmed, nil},
		{"unknown", StatusPending, "refund.created", StatusPending, "", ErrUnknownEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Payment{Status: tt.from}
			reg, err := p.ApplyGatewayEvent(tt.evt, "pay_1", "card declined", now)
			if err != tt.wantErr {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if p.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", p.Status, tt.wantStatus)
			}
			if reg != tt.wantReg {
				t.Errorf("registration status = %s, want %s", reg, tt.wantReg)
			}
		})
	}
}

func TestApplyGatewayEventReplayIsStable(t *testing.T) {
	now := time.Now()
	p := Payment{Status: StatusPending}
	if _, err := p.ApplyGatewayEvent(EventCaptured, "pay_1", "", now); err != nil {
		t.Fatal(err)
	}
	first := p
	if _, err := p.ApplyGatewayEvent(EventCaptured, "pay_1", "", now); err != nil {
		t.Fatal(err)
	}
	if p != first {
		t.Errorf("replay changed payment: %+v vs %+v", p, first)
	}
}

func TestMarkManuallyPaid(t *testing.T) {
	p := Payment{Status: StatusFailed, Method: MethodGateway, FailureReason: "declined"}
	if err := p.MarkManuallyPaid(time.Now()); err != nil {
		t.Fatal(err)
	}
	if p.Status != StatusCaptured || p.Method != MethodManual || p.FailureReason != "" {
		t.Errorf("unexpected payment: %+v", p)
	}
	if err := p.MarkManuallyPaid(time.Now()); err != ErrAlreadyCaptured {
		t.Errorf("second call = %v, want ErrAlreadyCaptured", err)
	}
}

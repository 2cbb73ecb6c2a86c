package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contract-intake/pkg/servicecenter"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lead creation webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client := servicecenter.NewClient(servicecenter.Config{
			APIKey:        cfg.ServiceCenter.APIKey,
			APISecret:     cfg.ServiceCenter.APISecret,
			MVendorID:     cfg.ServiceCenter.MVendorID,
			StoreID:       cfg.ServiceCenter.StoreID,
			ReferralStore: cfg.ServiceCenter.ReferralStore,
		},
			servicecenter.WithBaseURL(cfg.ServiceCenter.BaseURL),
			servicecenter.WithRateLimit(cfg.ServiceCenter.RPS),
		)

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/create-lead", createLeadHandler(client))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

type createLeadRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	City            string `json:"city"`
	State           string `json:"state"`
	Zip             string `json:"zip"`
	StoreID         string `json:"store_id"`
	Email           string `json:"email"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Comments        string `json:"site_comments"`
}

func (r createLeadRequest) missingFields() []string {
	var missing []string
	required := map[string]string{
		"first_name": r.FirstName,
		"last_name":  r.LastName,
		"phone":      r.Phone,
		"address":    r.Address,
		"city":       r.City,
		"state":      r.State,
		"zip":        r.Zip,
		"store_id":   r.StoreID,
	}
	for _, f := range []string{"first_name", "last_name", "phone", "address", "city", "state", "zip", "store_id"} {
		if required[f] == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

const defaultAppointmentTime = "08:00"

// appointmentFor builds the scheduled visit timestamp: the requested date
// at the requested time, defaulting to three days out at 08:00.
func appointmentFor(req createLeadRequest, now time.Time) (time.Time, error) {
	atTime := req.AppointmentTime
	if atTime == "" {
		atTime = defaultAppointmentTime
	}
	t, err := time.Parse("15:04", atTime)
	if err != nil {
		return time.Time{}, eris.Errorf("invalid appointment_time %q", req.AppointmentTime)
	}

	day := now.AddDate(0, 0, 3)
	if req.AppointmentDate != "" {
		day, err = time.Parse("2006-01-02", req.AppointmentDate)
		if err != nil {
			return time.Time{}, eris.Errorf("invalid appointment_date %q", req.AppointmentDate)
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.Local), nil
}

func createLeadHandler(client servicecenter.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLeadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "invalid JSON body",
			})
			return
		}
		if missing := req.missingFields(); len(missing) > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "missing required fields: " + strings.Join(missing, ", "),
			})
			return
		}

		appt, err := appointmentFor(req, time.Now())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		lead := servicecenter.Lead{
			FirstName:     req.FirstName,
			LastName:      req.LastName,
			Phone:         req.Phone,
			Email:         req.Email,
			Street:        req.Address,
			City:          req.City,
			State:         req.State,
			Zip:           req.Zip,
			ProgramGroup:  cfg.ServiceCenter.ProgramGroup,
			Comments:      req.Comments,
			ReferralStore: req.StoreID,
			Appointment:   appt,
		}

		orderNumber, err := client.CreateLead(r.Context(), lead)
		if err != nil {
			zap.S().Errorw("lead creation failed",
				"customer", req.FirstName+" "+req.LastName,
				"error", err)
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		id, err := servicecenter.AcquireID(r.Context(), client, orderNumber, servicecenter.AcquireOptions{
			MaxAttempts:  cfg.ServiceCenter.AcquireMaxAttempts,
			InitialDelay: time.Duration(cfg.ServiceCenter.AcquireInitialSecs) * time.Second,
			MaxDelay:     time.Duration(cfg.ServiceCenter.AcquireMaxDelaySecs) * time.Second,
			Multiplier:   cfg.ServiceCenter.AcquireMultiplier,
		})
		if err != nil {
			// The lead exists but its permanent ID is not available yet.
			// Report that honestly instead of inventing an ID.
			if errors.Is(err, servicecenter.ErrAcquisitionExhausted) {
				zap.S().Warnw("lead created but ID not yet available",
					"order_number", orderNumber)
				writeJSON(w, http.StatusGatewayTimeout, map[string]any{
					"success":          false,
					"error_kind":       "acquisition_exhausted",
					"error":            "lead created; service center ID not yet available",
					"order_number":     orderNumber,
					"customer_name":    req.FirstName + " " + req.LastName,
					"appointment_date": appt.Format("01/02/2006 15:04:05"),
				})
				return
			}
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		zap.S().Infow("lead created",
			"service_center_id", id,
			"order_number", orderNumber)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":           true,
			"service_center_id": id,
			"order_number":      orderNumber,
			"customer_name":     req.FirstName + " " + req.LastName,
			"appointment_date":  appt.Format("01/02/2006 15:04:05"),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

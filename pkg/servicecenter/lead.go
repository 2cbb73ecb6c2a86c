package servicecenter

import (
	"time"

	"github.com/rotisserie/eris"
)

// Lead is the input for CreateLead. Required fields are the customer
// identity, a reachable phone number, the site address, and the program
// group the lead is routed under.
type Lead struct {
	FirstName    string
	LastName     string
	Phone        string
	Email        string
	Street       string
	City         string
	State        string
	Zip          string
	ProgramGroup string
	Description  string
	Comments     string

	// OrderNumber overrides the generated order number. Leave empty to
	// let the client assign one.
	OrderNumber string

	// ReferralStore overrides the configured referral store for this
	// lead.
	ReferralStore string

	// Appointment, when non-zero, schedules a visit at creation time.
	Appointment time.Time

	// WorkflowStatus defaults to "Acknowledged".
	WorkflowStatus string
}

func (l Lead) validate() error {
	switch {
	case l.FirstName == "" || l.LastName == "":
		return eris.New("customer name is required")
	case l.Phone == "":
		return eris.New("phone is required")
	case l.Street == "" || l.City == "" || l.State == "" || l.Zip == "":
		return eris.New("site address is required")
	case l.ProgramGroup == "":
		return eris.New("program group is required")
	}
	return nil
}

const apptTimeLayout = "01/02/2006 15:04:05"

type leadHeader map[string]any

type batchRequest struct {
	Input struct {
		ListOfLeads struct {
			Headers []leadHeader `json:"MmSvCsServiceProviderLeadHeaderInbound"`
		} `json:"ListOfMmSvCsServiceProviderLeadInbound"`
	} `json:"SFILEADPOBATCHICONX_Input"`
}

type batchResponse struct {
	Output struct {
		ListOfLeads struct {
			Headers []struct {
				ErrorMessage string `json:"ErrorMessage"`
			} `json:"MmSvCsServiceProviderLeadHeaderInbound"`
		} `json:"ListOfMmSvCsServiceProviderLeadInbound"`
	} `json:"SFILEADPOBATCHICONX_Output"`
	Fault struct {
		Message string `json:"faultstring"`
	} `json:"FAULT"`
}

func (r batchResponse) errorMessage() string {
	if r.Fault.Message != "" {
		return r.Fault.Message
	}
	for _, h := range r.Output.ListOfLeads.Headers {
		if h.ErrorMessage != "" {
			return h.ErrorMessage
		}
	}
	return ""
}

func buildLeadPayload(lead Lead, orderNumber string, cfg Config) batchRequest {
	status := lead.WorkflowStatus
	if status == "" {
		status = "Acknowledged"
	}
	description := lead.Description
	if description == "" {
		description = lead.ProgramGroup + " Service Request"
	}
	referral := lead.ReferralStore
	if referral == "" {
		referral = cfg.ReferralStore
	}

	header := leadHeader{
		"Id":                                 orderNumber,
		"ContactFirstName":                   lead.FirstName,
		"ContactLastName":                    lead.LastName,
		"Description":                        description,
		"MMSVCSServiceProviderOrderNumber":   orderNumber,
		"MMSVPreferredContactPhoneNumber":    digitsOnly(lead.Phone),
		"MMSVSiteAddress":                    lead.Street,
		"MMSVSiteCity":                       lead.City,
		"MMSVSiteState":                      lead.State,
		"MMSVSitePostalCode":                 lead.Zip,
		"MMSVSiteCountry":                    "US",
		"MMSVStoreNumber":                    cfg.StoreID,
		"SFIMVendor":                         cfg.MVendorID,
		"SFIProgramGroupNameUnconstrained":   lead.ProgramGroup,
		"SFIReferralStore":                   referral,
		"SFIWorkflowOnlyStatus":              status,
		"MMSVCSNeedAck":                      "N",
		"MMSVCSSubmitLeadFlag":               "N",
		"MMSVCSSVSTypeCode":                  10,
		"SFIContractDate":                    time.Now().Format(apptTimeLayout),
		"MMSVCSLeadBatchNumber":              "BATCH" + orderNumber,
	}
	if lead.Email != "" {
		header["MainEmailAddress"] = lead.Email
	}
	if lead.Comments != "" {
		header["MMSVSiteComments"] = lead.Comments
	}
	if !lead.Appointment.IsZero() {
		appt := lead.Appointment.Format(apptTimeLayout)
		header["ListOfMmSvCsServiceProviderAppointment"] = map[string]any{
			"MmSvCsServiceProviderAppointment": []map[string]any{{
				"Id":                    "APPT1",
				"OriginalApptDate":      "",
				"ScheduleDate":          appt,
				"RescheduledFlag":       "N",
				"PreferredScheduleDate": appt,
			}},
		}
	}

	var req batchRequest
	req.Input.ListOfLeads.Headers = []leadHeader{header}
	return req
}

type lookupRequest struct {
	Input struct {
		PageSize    string `json:"PageSize"`
		StartRowNum string `json:"StartRowNum"`
		ListOfLeads struct {
			Headers []map[string]string `json:"Sfileadheaderws"`
		} `json:"ListOfSfileadbows"`
	} `json:"SFILEADLOOKUPWS_Input"`
}

type lookupResponse struct {
	Output struct {
		ListOfLeads struct {
			Headers []struct {
				ID string `json:"Id"`
			} `json:"Sfileadheaderws"`
		} `json:"ListOfSfileadbows"`
	} `json:"SFILEADLOOKUPWS_Output"`
}

func buildLookupPayload(orderNumber string) lookupRequest {
	var req lookupRequest
	req.Input.PageSize = "10"
	req.Input.StartRowNum = "0"
	req.Input.ListOfLeads.Headers = []map[string]string{
		{"MMSVCSServiceProviderOrderNumber": orderNumber},
	}
	return req
}

func digitsOnly(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

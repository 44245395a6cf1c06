package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"naql_backend/internal/leads/domain"

	"github.com/stretchr/testify/require"
)

func TestSubmitLeadReturnsLeadID(t *testing.T) {
	var got domain.LeadRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/lead", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"leadId":"JED-1773122400000","message":"تم استلام طلبك بنجاح"}`))
	}))
	defer srv.Close()

	rec := domain.NewLeadRecord()
	rec.CustomerName = "أحمد"

	id, err := New(srv.URL + "/").SubmitLead(context.Background(), rec)
	require.NoError(t, err)
	require.Equal(t, "JED-1773122400000", id)
	require.Equal(t, "أحمد", got.CustomerName)
}

func TestSubmitLeadSurfacesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"success":false,"message":"طلبات كثيرة جداً. يرجى المحاولة بعد دقيقة."}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).SubmitLead(context.Background(), domain.NewLeadRecord())

	var submitErr *SubmitError
	require.True(t, errors.As(err, &submitErr))
	require.Equal(t, http.StatusTooManyRequests, submitErr.Status)
	require.Equal(t, "طلبات كثيرة جداً. يرجى المحاولة بعد دقيقة.", submitErr.UserMessage())
}

func TestSubmitLeadCarriesFieldErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"البيانات المرسلة غير صحيحة","errors":{"customer_phone":"يرجى إدخال رقم جوال سعودي صحيح (مطلوب)"}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).SubmitLead(context.Background(), domain.NewLeadRecord())

	var submitErr *SubmitError
	require.True(t, errors.As(err, &submitErr))
	require.Contains(t, submitErr.Fields, "customer_phone")
}

func TestSubmitLeadUnparsableBodyIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).SubmitLead(context.Background(), domain.NewLeadRecord())

	var submitErr *SubmitError
	require.True(t, errors.As(err, &submitErr))
	require.Equal(t, GenericFailureMessage, submitErr.UserMessage())
}

func TestSubmitLeadTransportFailureIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).SubmitLead(context.Background(), domain.NewLeadRecord())

	var submitErr *SubmitError
	require.True(t, errors.As(err, &submitErr))
	require.Equal(t, GenericFailureMessage, submitErr.UserMessage())
	require.Error(t, submitErr.Unwrap())
}

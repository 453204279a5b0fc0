package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"book-order-service/internal/domain"
	"book-order-service/internal/mocks"
	"book-order-service/internal/pricing"
	"book-order-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderService_SubmitOrder(t *testing.T) {
	tests := []struct {
		name          string
		input         func() SubmitOrderInput
		setupMocks    func(*mocks.MockOrderRepository)
		expectedError error
		invalidFields []string
		check         func(*testing.T, *domain.Order)
	}{
		{
			name:  "successful order submission",
			input: validOrderInput,
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Run(func(args mock.Arguments) {
					order := args.Get(1).(*domain.Order)
					order.ID = "abc123"
				})
			},
			check: func(t *testing.T, o *domain.Order) {
				assert.Equal(t, "abc123", o.ID)
				assert.Equal(t, domain.StatusPending, o.Status)
				assert.Equal(t, int64(2500), o.BookAmount)
				assert.Equal(t, int64(300), o.DeliveryFee)
				assert.Equal(t, int64(2800), o.TotalAmount)
				assert.Nil(t, o.MpesaCode)
				assert.Nil(t, o.MpesaPhone)
				assert.WithinDuration(t, time.Now(), o.CreatedAt, time.Second)
			},
		},
		{
			name: "defaults edition and quantity",
			input: func() SubmitOrderInput {
				in := validOrderInput()
				in.Edition = ""
				in.Quantity = 0
				in.DeliveryLocation = domain.ZoneKenya
				return in
			},
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
			},
			check: func(t *testing.T, o *domain.Order) {
				assert.Equal(t, domain.EditionPaperback, o.Edition)
				assert.Equal(t, 1, o.Quantity)
				assert.Equal(t, int64(3000), o.TotalAmount)
			},
		},
		{
			name: "trims customer fields",
			input: func() SubmitOrderInput {
				in := validOrderInput()
				in.FirstName = "  Wanjiru "
				in.Email = " wanjiru@example.com\t"
				return in
			},
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
			},
			check: func(t *testing.T, o *domain.Order) {
				assert.Equal(t, "Wanjiru", o.FirstName)
				assert.Equal(t, "wanjiru@example.com", o.Email)
			},
		},
		{
			name: "blank first name",
			input: func() SubmitOrderInput {
				in := validOrderInput()
				in.FirstName = "   "
				return in
			},
			invalidFields: []string{"firstName"},
		},
		{
			name: "invalid email",
			input: func() SubmitOrderInput {
				in := validOrderInput()
				in.Email = "not-an-email"
				return in
			},
			invalidFields: []string{"email"},
		},
		{
			name: "unknown delivery location",
			input: func() SubmitOrderInput {
				in := validOrderInput()
				in.DeliveryLocation = "mombasa"
				return in
			},
			invalidFields: []string{"deliveryLocation"},
		},
		{
			name: "quantity above limit",
			input: func() SubmitOrderInput {
				in := validOrderInput()
				in.Quantity = MaxQuantity + 1
				return in
			},
			invalidFields: []string{"quantity"},
		},
		{
			name: "every required field missing",
			input: func() SubmitOrderInput {
				return SubmitOrderInput{}
			},
			invalidFields: []string{"firstName", "lastName", "email", "phone", "address", "city", "postalCode", "deliveryLocation"},
		},
		{
			name:  "store failure",
			input: validOrderInput,
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(errors.New("database error"))
			},
			expectedError: ErrOperationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockOrderRepository)
			if tt.setupMocks != nil {
				tt.setupMocks(mockRepo)
			}
			service, _ := newTestOrderService(t, mockRepo)

			result, err := service.SubmitOrder(context.Background(), tt.input())

			switch {
			case len(tt.invalidFields) > 0:
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Len(t, ve.Fields, len(tt.invalidFields))
				for _, f := range tt.invalidFields {
					assert.Contains(t, ve.Fields, f)
				}
				assert.Nil(t, result)
				mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			default:
				require.NoError(t, err)
				require.NotNil(t, result)
				tt.check(t, result)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestOrderService_SubmitOrder_FieldMessages(t *testing.T) {
	mockRepo := new(mocks.MockOrderRepository)
	service, _ := newTestOrderService(t, mockRepo)

	in := validOrderInput()
	in.FirstName = ""
	in.Email = "wanjiru@"

	_, err := service.SubmitOrder(context.Background(), in)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "First name is required", ve.Fields["firstName"])
	assert.Equal(t, "Please enter a valid email address", ve.Fields["email"])
}

func TestOrderService_SubmitOrder_PublishesCreated(t *testing.T) {
	mockRepo := new(mocks.MockOrderRepository)
	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Order).ID = "abc123"
	})

	published := make(chan domain.OrderCreatedEvent, 1)
	mockPub := new(mocks.MockPublisher)
	mockPub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.AnythingOfType("domain.OrderCreatedEvent")).Return(nil).Run(func(args mock.Arguments) {
		published <- args.Get(2).(domain.OrderCreatedEvent)
	})

	service, _ := newTestOrderService(t, mockRepo)
	service.publisher = mockPub

	_, err := service.SubmitOrder(context.Background(), validOrderInput())
	require.NoError(t, err)

	select {
	case evt := <-published:
		assert.Equal(t, "abc123", evt.OrderID)
		assert.Equal(t, int64(2800), evt.TotalAmount)
	case <-time.After(time.Second):
		t.Fatal("order.created was not published")
	}
}

func TestOrderService_SubmitOrder_PublishFailureIgnored(t *testing.T) {
	mockRepo := new(mocks.MockOrderRepository)
	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	mockPub := new(mocks.MockPublisher)
	mockPub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Maybe()

	service, _ := newTestOrderService(t, mockRepo)
	service.publisher = mockPub

	result, err := service.SubmitOrder(context.Background(), validOrderInput())
	assert.NoError(t, err)
	assert.NotNil(t, result)
}

func TestOrderService_GetOrder(t *testing.T) {
	tests := []struct {
		name          string
		orderID       string
		setupMocks    func(*mocks.MockOrderRepository)
		expectedError error
	}{
		{
			name:    "successful order retrieval",
			orderID: "abc123",
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("FindByID", mock.Anything, "abc123").Return(createMockOrder("abc123", domain.StatusPending), nil)
			},
		},
		{
			name:    "order not found",
			orderID: "missing",
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("FindByID", mock.Anything, "missing").Return(nil, nil)
			},
			expectedError: ErrOrderNotFound,
		},
		{
			name:          "empty id",
			orderID:       "",
			setupMocks:    func(*mocks.MockOrderRepository) {},
			expectedError: ErrOrderNotFound,
		},
		{
			name:    "repository error",
			orderID: "abc123",
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("FindByID", mock.Anything, "abc123").Return(nil, errors.New("database connection error"))
			},
			expectedError: ErrOperationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockOrderRepository)
			tt.setupMocks(mockRepo)
			service, _ := newTestOrderService(t, mockRepo)

			result, err := service.GetOrder(context.Background(), tt.orderID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, result)
				assert.Equal(t, tt.orderID, result.ID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestOrderService_ConfirmPayment(t *testing.T) {
	payment := PaymentInput{MpesaCode: "QA72HGKL9M", MpesaPhone: "254712345678"}

	tests := []struct {
		name          string
		input         PaymentInput
		setupMocks    func(*mocks.MockOrderRepository)
		expectedError error
	}{
		{
			name:  "successful confirmation",
			input: payment,
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("FindByID", mock.Anything, "abc123").Return(createMockOrder("abc123", domain.StatusPending), nil)
				mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Order"), domain.StatusPending).Return(nil)
			},
		},
		{
			name:  "order not found",
			input: payment,
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("FindByID", mock.Anything, "abc123").Return(nil, nil)
			},
			expectedError: ErrOrderNotFound,
		},
		{
			name:  "already confirmed",
			input: payment,
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("FindByID", mock.Anything, "abc123").Return(createMockOrder("abc123", domain.StatusPaymentConfirmed), nil)
			},
			expectedError: ErrPaymentAlreadyConfirmed,
		},
		{
			name:  "lost race against concurrent confirmation",
			input: payment,
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("FindByID", mock.Anything, "abc123").Return(createMockOrder("abc123", domain.StatusPending), nil)
				mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Order"), domain.StatusPending).Return(repository.ErrStatusConflict)
			},
			expectedError: ErrPaymentAlreadyConfirmed,
		},
		{
			name:  "store failure",
			input: payment,
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("FindByID", mock.Anything, "abc123").Return(createMockOrder("abc123", domain.StatusPending), nil)
				mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Order"), domain.StatusPending).Return(errors.New("write timeout"))
			},
			expectedError: ErrOperationFailed,
		},
		{
			name:          "missing mpesa code",
			input:         PaymentInput{MpesaCode: " ", MpesaPhone: "254712345678"},
			setupMocks:    func(*mocks.MockOrderRepository) {},
			expectedError: &ValidationError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockOrderRepository)
			tt.setupMocks(mockRepo)
			service, _ := newTestOrderService(t, mockRepo)

			result, err := service.ConfirmPayment(context.Background(), "abc123", tt.input)

			var ve *ValidationError
			switch {
			case errors.As(tt.expectedError, &ve):
				var got *ValidationError
				require.ErrorAs(t, err, &got)
				assert.Equal(t, "M-Pesa confirmation code is required", got.Fields["mpesaCode"])
				mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			default:
				require.NoError(t, err)
				require.NotNil(t, result)
				assert.Equal(t, domain.StatusPaymentConfirmed, result.Status)
				require.NotNil(t, result.MpesaCode)
				require.NotNil(t, result.MpesaPhone)
				assert.Equal(t, "QA72HGKL9M", *result.MpesaCode)
				assert.Equal(t, "254712345678", *result.MpesaPhone)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestOrderService_AdvanceStatus(t *testing.T) {
	tests := []struct {
		name          string
		current       domain.OrderStatus
		to            domain.OrderStatus
		expectedError error
	}{
		{name: "confirmed to shipped", current: domain.StatusPaymentConfirmed, to: domain.StatusShipped},
		{name: "shipped to completed", current: domain.StatusShipped, to: domain.StatusCompleted},
		{name: "pending cannot ship", current: domain.StatusPending, to: domain.StatusShipped, expectedError: ErrInvalidTransition},
		{name: "cannot skip shipping", current: domain.StatusPaymentConfirmed, to: domain.StatusCompleted, expectedError: ErrInvalidTransition},
		{name: "completed is final", current: domain.StatusCompleted, to: domain.StatusShipped, expectedError: ErrInvalidTransition},
		{name: "unknown status", current: domain.StatusShipped, to: "cancelled", expectedError: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockOrderRepository)
			mockRepo.On("FindByID", mock.Anything, "abc123").Return(createMockOrder("abc123", tt.current), nil).Maybe()
			mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Order"), tt.current).Return(nil).Maybe()
			service, _ := newTestOrderService(t, mockRepo)

			result, err := service.AdvanceStatus(context.Background(), "abc123", tt.to)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
				mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, result.Status)
		})
	}
}

func TestOrderService_EndToEnd(t *testing.T) {
	repo := newMemOrderRepo()
	service, _ := newTestOrderService(t, repo)
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	ctx := context.Background()

	in := validOrderInput()
	in.Edition = domain.EditionHardback
	in.Quantity = 2
	in.DeliveryLocation = domain.ZoneKenya

	order, err := service.SubmitOrder(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), order.BookAmount)
	assert.Equal(t, int64(500), order.DeliveryFee)
	assert.Equal(t, int64(6500), order.TotalAmount)
	assert.Equal(t, domain.StatusPending, order.Status)

	fetched, err := service.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, fetched.Status)
	assert.Nil(t, fetched.MpesaCode)
	assert.Nil(t, fetched.MpesaPhone)

	confirmed, err := service.ConfirmPayment(ctx, order.ID, PaymentInput{MpesaCode: "ABC123", MpesaPhone: "254700000000"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaymentConfirmed, confirmed.Status)

	stored, err := service.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaymentConfirmed, stored.Status)
	assert.Equal(t, "ABC123", *stored.MpesaCode)
	assert.Equal(t, "254700000000", *stored.MpesaPhone)
	assert.Equal(t, int64(6500), stored.TotalAmount)
	assert.True(t, stored.UpdatedAt.After(stored.CreatedAt))

	_, err = service.ConfirmPayment(ctx, order.ID, PaymentInput{MpesaCode: "XYZ999", MpesaPhone: "254711111111"})
	assert.ErrorIs(t, err, ErrPaymentAlreadyConfirmed)

	stored, err = service.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", *stored.MpesaCode)

	shipped, err := service.AdvanceStatus(ctx, order.ID, domain.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, shipped.Status)

	completed, err := service.AdvanceStatus(ctx, order.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
}

func TestOrderService_ConcurrentConfirmations(t *testing.T) {
	repo := newMemOrderRepo()
	service, _ := newTestOrderService(t, repo)

	order, err := service.SubmitOrder(context.Background(), validOrderInput())
	require.NoError(t, err)

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.ConfirmPayment(context.Background(), order.ID, PaymentInput{MpesaCode: "QA72HGKL9M", MpesaPhone: "254712345678"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrPaymentAlreadyConfirmed):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)
}

func TestOrderService_Quote(t *testing.T) {
	service, _ := newTestOrderService(t, new(mocks.MockOrderRepository))

	b, err := service.Quote(domain.EditionPaperback, 3, domain.ZoneNairobi)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), b.BookAmount)
	assert.Equal(t, int64(7800), b.Total)

	_, err = service.Quote(domain.EditionPaperback, 0, domain.ZoneNairobi)
	assert.Error(t, err)
}

func BenchmarkOrderService_SubmitOrder(b *testing.B) {
	repo := newMemOrderRepo()
	prices, _ := pricing.NewTable(pricing.TierIntroductory)
	mockPublisher := new(mocks.MockPublisher)
	mockPublisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	service := NewOrderService(repo, prices, mockPublisher, testTimeout)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = service.SubmitOrder(context.Background(), validOrderInput())
		}
	})
}

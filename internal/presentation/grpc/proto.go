package grpc

// proto.go defines the gRPC server interface for microcred.v1.LedgerService.
// Messages travel with the JSON codec registered in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/microcred/internal/application/dto"
)

const ledgerServiceName = "microcred.v1.LedgerService"

// LedgerServiceServer is the server API for LedgerService.
type LedgerServiceServer interface {
	ProcessPayment(context.Context, *ProcessPaymentRequest) (*dto.ProcessPaymentResponse, error)
	ReversePayment(context.Context, *ReversePaymentRequest) (*dto.ReversePaymentResponse, error)
	OriginateLoan(context.Context, *OriginateLoanRequest) (*dto.LoanResponse, error)
	GetLoan(context.Context, *GetLoanRequest) (*dto.LoanResponse, error)
	DeleteLoan(context.Context, *DeleteLoanRequest) (*dto.DeleteLoanResponse, error)
	RegisterClient(context.Context, *RegisterClientRequest) (*dto.ClientResponse, error)
	GetClient(context.Context, *GetClientRequest) (*dto.ClientResponse, error)
	ListAlerts(context.Context, *ListAlertsRequest) (*dto.ListAlertsResponse, error)
	ListPayments(context.Context, *ListPaymentsRequest) (*dto.ListPaymentsResponse, error)
	mustEmbedUnimplementedLedgerServiceServer()
}

// UnimplementedLedgerServiceServer provides forward-compatible default implementations.
type UnimplementedLedgerServiceServer struct{}

func (UnimplementedLedgerServiceServer) ProcessPayment(context.Context, *ProcessPaymentRequest) (*dto.ProcessPaymentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ProcessPayment not implemented")
}
func (UnimplementedLedgerServiceServer) ReversePayment(context.Context, *ReversePaymentRequest) (*dto.ReversePaymentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ReversePayment not implemented")
}
func (UnimplementedLedgerServiceServer) OriginateLoan(context.Context, *OriginateLoanRequest) (*dto.LoanResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method OriginateLoan not implemented")
}
func (UnimplementedLedgerServiceServer) GetLoan(context.Context, *GetLoanRequest) (*dto.LoanResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetLoan not implemented")
}
func (UnimplementedLedgerServiceServer) DeleteLoan(context.Context, *DeleteLoanRequest) (*dto.DeleteLoanResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DeleteLoan not implemented")
}
func (UnimplementedLedgerServiceServer) RegisterClient(context.Context, *RegisterClientRequest) (*dto.ClientResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RegisterClient not implemented")
}
func (UnimplementedLedgerServiceServer) GetClient(context.Context, *GetClientRequest) (*dto.ClientResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetClient not implemented")
}
func (UnimplementedLedgerServiceServer) ListAlerts(context.Context, *ListAlertsRequest) (*dto.ListAlertsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListAlerts not implemented")
}
func (UnimplementedLedgerServiceServer) ListPayments(context.Context, *ListPaymentsRequest) (*dto.ListPaymentsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListPayments not implemented")
}
func (UnimplementedLedgerServiceServer) mustEmbedUnimplementedLedgerServiceServer() {}

// RegisterLedgerServiceServer registers the LedgerServiceServer with the gRPC server.
func RegisterLedgerServiceServer(s grpclib.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&_LedgerService_serviceDesc, srv) //nolint:revive // gRPC handler registration
}

//nolint:revive // gRPC handler registration
var _LedgerService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: ledgerServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "ProcessPayment", Handler: unaryHandler("ProcessPayment", LedgerServiceServer.ProcessPayment)},
		{MethodName: "ReversePayment", Handler: unaryHandler("ReversePayment", LedgerServiceServer.ReversePayment)},
		{MethodName: "OriginateLoan", Handler: unaryHandler("OriginateLoan", LedgerServiceServer.OriginateLoan)},
		{MethodName: "GetLoan", Handler: unaryHandler("GetLoan", LedgerServiceServer.GetLoan)},
		{MethodName: "DeleteLoan", Handler: unaryHandler("DeleteLoan", LedgerServiceServer.DeleteLoan)},
		{MethodName: "RegisterClient", Handler: unaryHandler("RegisterClient", LedgerServiceServer.RegisterClient)},
		{MethodName: "GetClient", Handler: unaryHandler("GetClient", LedgerServiceServer.GetClient)},
		{MethodName: "ListAlerts", Handler: unaryHandler("ListAlerts", LedgerServiceServer.ListAlerts)},
		{MethodName: "ListPayments", Handler: unaryHandler("ListPayments", LedgerServiceServer.ListPayments)},
	},
	Streams: []grpclib.StreamDesc{},
}

// unaryHandler builds the method handler for one unary RPC. It decodes the
// request, runs the interceptor chain when present and dispatches to call.
func unaryHandler[Req, Resp any](
	method string,
	call func(LedgerServiceServer, context.Context, *Req) (*Resp, error),
) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	fullMethod := "/" + ledgerServiceName + "/" + method
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

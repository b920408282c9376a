package classifier

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ScoreMethod is the full gRPC method name served by a remote risk model.
// Request and response are google.protobuf.Struct values:
//
//	request:  {"token_ids": [3, 17, 0, ...]}
//	response: {"score": 0.87}
const ScoreMethod = "/lifeline.risk.v1.RiskScorer/Score"

const defaultRemoteTimeout = 5 * time.Second

// GRPCModel delegates inference to a model server. Tokenization and padding
// still happen locally so that every backend sees the same input.
type GRPCModel struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// DialGRPCModel connects to a remote scorer. Extra dial options are appended
// after the default insecure transport credentials.
func DialGRPCModel(address string, opts ...grpc.DialOption) (*GRPCModel, error) {
	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to risk scorer at %s: %w", address, err)
	}

	return &GRPCModel{
		conn:    conn,
		timeout: defaultRemoteTimeout,
	}, nil
}

func (m *GRPCModel) Close() error {
	return m.conn.Close()
}

// Predict implements SequenceModel. It makes a single call per sequence.
func (m *GRPCModel) Predict(ctx context.Context, seq []int32) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	ids := make([]any, len(seq))
	for i, id := range seq {
		ids[i] = id
	}
	req, err := structpb.NewStruct(map[string]any{"token_ids": ids})
	if err != nil {
		return 0, fmt.Errorf("building score request: %w", err)
	}

	resp := &structpb.Struct{}
	if err := m.conn.Invoke(ctx, ScoreMethod, req, resp); err != nil {
		if status.Code(err) == codes.DeadlineExceeded {
			return 0, fmt.Errorf("risk scorer timed out: %w", err)
		}
		return 0, fmt.Errorf("risk scorer call failed: %w", err)
	}

	v, ok := resp.GetFields()["score"]
	if !ok {
		return 0, fmt.Errorf("risk scorer response has no score")
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("risk scorer returned a non-numeric score")
	}
	return n.NumberValue, nil
}

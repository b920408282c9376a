package classifier_test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/PabloGalante/lifeline/internal/adapters/classifier"
)

// flakyCalls counts calls whose first token is 97.
var flakyCalls atomic.Int32

// fakeScore scores a sequence as the share of non-padding tokens.
// A first token of 98 fails the call, 99 answers without a score and 97
// fails only on its first call.
func fakeScore(_ any, _ context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	in := &structpb.Struct{}
	if err := dec(in); err != nil {
		return nil, err
	}
	ids := in.GetFields()["token_ids"].GetListValue().GetValues()
	if len(ids) == 0 {
		return nil, status.Error(codes.InvalidArgument, "no token_ids")
	}

	switch ids[0].GetNumberValue() {
	case 98:
		return nil, status.Error(codes.Unavailable, "model not loaded")
	case 99:
		return &structpb.Struct{}, nil
	case 97:
		if flakyCalls.Add(1) == 1 {
			return nil, status.Error(codes.Unavailable, "warming up")
		}
	}

	nonZero := 0
	for _, v := range ids {
		if v.GetNumberValue() != 0 {
			nonZero++
		}
	}
	return structpb.NewStruct(map[string]any{"score": float64(nonZero) / float64(len(ids))})
}

func startFakeScorer(t *testing.T) *classifier.GRPCModel {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: "lifeline.risk.v1.RiskScorer",
		HandlerType: (*any)(nil),
		Methods:     []grpc.MethodDesc{{MethodName: "Score", Handler: fakeScore}},
	}, struct{}{})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	model, err := classifier.DialGRPCModel("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = model.Close() })
	return model
}

func TestGRPCModelPredict(t *testing.T) {
	model := startFakeScorer(t)

	score, err := model.Predict(context.Background(), []int32{5, 7, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.5, score)
}

func TestGRPCModelErrors(t *testing.T) {
	model := startFakeScorer(t)
	ctx := context.Background()

	_, err := model.Predict(ctx, []int32{98, 1})
	require.Error(t, err)
	assert.Equal(t, codes.Unavailable, status.Code(err))

	_, err = model.Predict(ctx, []int32{99, 1})
	assert.ErrorContains(t, err, "no score")
}

func TestGRPCModelCallsOnce(t *testing.T) {
	model := startFakeScorer(t)
	flakyCalls.Store(0)

	_, err := model.Predict(context.Background(), []int32{97, 0})
	require.Error(t, err)
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Equal(t, int32(1), flakyCalls.Load())
}

func TestGRPCModelBehindClassifier(t *testing.T) {
	tok, err := classifier.ParseTokenizer([]byte(kerasTokenizerJSON))
	require.NoError(t, err)

	c := classifier.New(tok, startFakeScorer(t))
	score, err := c.Score(context.Background(), "I want to end it all")
	require.NoError(t, err)

	// Six known words in a sequence padded to 100.
	assert.InDelta(t, 0.06, float64(score), 1e-9)
}

package aws

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
)

func TestPumpMessagesRetriesAfterReceiveError(t *testing.T) {
	old := receiveBackoff
	receiveBackoff = time.Millisecond
	defer func() { receiveBackoff = old }()

	var calls atomic.Int32
	chn := make(chan *sqstypes.Message, 1)
	go pumpMessages("TestQueue", func() ([]sqstypes.Message, error) {
		n := calls.Add(1)
		if n <= 2 {
			return nil, errors.New("connection reset by peer")
		}
		if n == 3 {
			return []sqstypes.Message{{
				MessageId: aws.String("m-1"),
				Body:      aws.String("hello"),
			}}, nil
		}
		time.Sleep(10 * time.Millisecond)
		return nil, nil
	}, chn)

	select {
	case m := <-chn:
		assert.Equal(t, "hello", *m.Body)
	case <-time.After(2 * time.Second):
		t.Fatal("receive errors killed the pump before a message came through")
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

/*
Copyright © 2022 Bartłomiej Święcki (byo)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package executor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolRunsAllTasks(t *testing.T) {
	p := New(4)
	var count int64

	for i := 0; i < 50; i++ {
		require.NoError(t, p.SubmitBlocking(context.Background(), func() error {
			atomic.AddInt64(&count, 1)
			return nil
		}))
	}

	require.NoError(t, p.Wait())
	require.Equal(t, int64(50), count)
}

func TestPoolRespectsConcurrencyLimit(t *testing.T) {
	p := New(3)
	var inFlight, maxSeen int64

	for i := 0; i < 30; i++ {
		require.NoError(t, p.SubmitBlocking(context.Background(), func() error {
			cur := atomic.AddInt64(&inFlight, 1)
			for {
				seen := atomic.LoadInt64(&maxSeen)
				if cur <= seen || atomic.CompareAndSwapInt64(&maxSeen, seen, cur) {
					break
				}
			}
			atomic.AddInt64(&inFlight, -1)
			return nil
		}))
	}

	require.NoError(t, p.Wait())
	require.LessOrEqual(t, atomic.LoadInt64(&maxSeen), int64(3))
}

func TestPoolWaitReturnsFirstError(t *testing.T) {
	p := New(2)
	boom := errors.New("boom")

	require.NoError(t, p.SubmitBlocking(context.Background(), func() error {
		return boom
	}))

	require.ErrorIs(t, p.Wait(), boom)
}

func TestSystemCSPRNGReturnsRequestedLength(t *testing.T) {
	b, err := SystemCSPRNG{}.RandomBytes(16)
	require.NoError(t, err)
	require.Len(t, b, 16)
}

func TestIVGeneratorProducesDistinctIVs(t *testing.T) {
	gen := NewIVGenerator(SystemCSPRNG{})
	a, err := gen.Next()
	require.NoError(t, err)
	b, err := gen.Next()
	require.NoError(t, err)
	require.False(t, a.Equal(b))
}

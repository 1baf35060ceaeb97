// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dferrors_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/hector/dferrors"
)

func TestCategoryOfRecoversWireCategory(t *testing.T) {
	err := dferrors.ErrAttributeExists.New("edge")
	require.Equal(t, dferrors.Conflict, dferrors.CategoryOf(err))

	err = dferrors.ErrAttributeNotFound.New("edge")
	require.Equal(t, dferrors.NotFound, dferrors.CategoryOf(err))
}

func TestCategoryOfFallsBackToIncorrect(t *testing.T) {
	require.Equal(t, dferrors.Incorrect, dferrors.CategoryOf(assertError{}))
}

type assertError struct{}

func (assertError) Error() string { return "boom" }

func TestToWireFrame(t *testing.T) {
	frame, t64 := dferrors.ToWireFrame(dferrors.ErrRuleNotFound.New("reach", ""), 7)
	require.Equal(t, "df.error.category/not-found", frame.Category)
	require.Equal(t, int64(7), t64)
	require.Contains(t, frame.Message, "reach")
}

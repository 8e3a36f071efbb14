package astiavlogger

import (
	"testing"

	"github.com/asticode/go-astiav"
	"github.com/stretchr/testify/require"
)

func TestClassCategoryToString(t *testing.T) {
	require.Equal(t, "Encoder", ClassCategoryToString(astiav.ClassCategoryEncoder))
	require.Equal(t, "DeviceVideoInput", ClassCategoryToString(astiav.ClassCategoryDeviceVideoInput))
	require.Equal(t, "unexpected_class_category_12345", ClassCategoryToString(astiav.ClassCategory(12345)))
	require.Empty(t, ClassChain(nil))
}

package smooth_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSmooth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Smooth Suite")
}

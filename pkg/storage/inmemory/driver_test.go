package inmemory_test

import (
	. "github.com/onsi/ginkgo/v2"

	"github.com/papercomputeco/chatbot/pkg/storage"
	"github.com/papercomputeco/chatbot/pkg/storage/inmemory"
	"github.com/papercomputeco/chatbot/pkg/storage/storagetest"
)

var _ = Describe("Driver", func() {
	storagetest.DriverBehaviors(func() storage.Driver {
		return inmemory.NewDriver()
	})
})

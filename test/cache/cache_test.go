package cache

import (
	"context"
	"testing"

	"github.com/go-resty/resty/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/webhookx-io/eventsvc/api"
	"github.com/webhookx-io/eventsvc/app"
	"github.com/webhookx-io/eventsvc/db"
	"github.com/webhookx-io/eventsvc/db/entities"
	"github.com/webhookx-io/eventsvc/mcache"
	"github.com/webhookx-io/eventsvc/test/helper"
)

type Record map[string]interface{}

func get(client *resty.Client, id string) Record {
	resp, err := client.R().
		SetQueryParam("id", id).
		SetResult(&Record{}).
		Get(api.EventsPath)
	assert.NoError(GinkgoT(), err)
	assert.Equal(GinkgoT(), 200, resp.StatusCode())
	return *resp.Result().(*Record)
}

// rename changes the stored document behind the application's back.
func rename(store *db.DB, event *entities.Event, tagline string) {
	event.Document["tagline"] = tagline
	assert.NoError(GinkgoT(), store.Events.Update(context.TODO(), event))
}

var _ = Describe("cache", Ordered, func() {

	Context("enabled", func() {
		var app *app.Application
		var client *resty.Client
		var store *db.DB
		var seeded []*entities.Event

		BeforeAll(func() {
			store, seeded = helper.InitDB(true, []map[string]interface{}{
				helper.EventRecord("Launch", "2030-01-01T10:00:00Z"),
			})
			app = helper.MustStart(nil)
			client = helper.APIClient()
		})

		AfterAll(func() {
			assert.NoError(GinkgoT(), helper.Stop(app))
			_ = store.Close()
			mcache.Set(nil)
		})

		It("serves reads from the cache until a write goes through the api", func() {
			event := seeded[0]
			assert.Equal(GinkgoT(), "A night to remember", get(client, event.ID)["tagline"])

			rename(store, event, "changed out of band")
			assert.Equal(GinkgoT(), "A night to remember", get(client, event.ID)["tagline"])

			resp, err := client.R().
				SetBody(map[string]interface{}{"description": "updated"}).
				Put(api.EventsPath + "/" + event.ID)
			assert.NoError(GinkgoT(), err)
			assert.Equal(GinkgoT(), 200, resp.StatusCode())

			record := get(client, event.ID)
			assert.Equal(GinkgoT(), "changed out of band", record["tagline"])
			assert.Equal(GinkgoT(), "updated", record["description"])
		})
	})

	Context("disabled", func() {
		var app *app.Application
		var client *resty.Client
		var store *db.DB
		var seeded []*entities.Event

		BeforeAll(func() {
			mcache.Set(nil)
			store, seeded = helper.InitDB(true, []map[string]interface{}{
				helper.EventRecord("Launch", "2030-01-01T10:00:00Z"),
			})
			app = helper.MustStart(map[string]string{
				"EVENTSVC_API_CACHE_ENABLED": "false",
			})
			client = helper.APIClient()
		})

		AfterAll(func() {
			assert.NoError(GinkgoT(), helper.Stop(app))
			_ = store.Close()
		})

		It("reads through to the store", func() {
			event := seeded[0]
			assert.Equal(GinkgoT(), "A night to remember", get(client, event.ID)["tagline"])

			rename(store, event, "changed out of band")
			Expect(get(client, event.ID)["tagline"]).To(Equal("changed out of band"))
		})
	})
})

func TestCache(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cache Suite")
}

package monitoring

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gurkanfikretgunak/corestate/core"
)

var _ = Describe("Monitor", func() {
	var (
		monitor   *Monitor
		container *core.Container
		server    *httptest.Server
	)

	BeforeEach(func() {
		monitor = NewMonitor()
		container = core.MakeContainerBuilder().
			WithName("C1").
			WithLoadDuration(0).
			WithUpdateDuration(0).
			Build()
		monitor.RegisterContainer(container)

		server = httptest.NewServer(monitor.router())
	})

	AfterEach(func() {
		server.Close()
		container.Dispose()
	})

	get := func(path string) (int, string) {
		rsp, err := http.Get(server.URL + path)
		Expect(err).ToNot(HaveOccurred())
		defer rsp.Body.Close()

		body, err := io.ReadAll(rsp.Body)
		Expect(err).ToNot(HaveOccurred())

		return rsp.StatusCode, string(body)
	}

	It("should list the registered containers", func() {
		code, body := get("/api/containers")

		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(Equal(`["C1"]`))
	})

	It("should escape special characters in container names", func() {
		odd := core.MakeContainerBuilder().
			WithName(`C"2\`).
			Build()
		defer odd.Dispose()
		monitor.RegisterContainer(odd)

		code, body := get("/api/containers")

		Expect(code).To(Equal(http.StatusOK))

		var names []string
		Expect(json.Unmarshal([]byte(body), &names)).To(Succeed())
		Expect(names).To(ConsistOf("C1", `C"2\`))
	})

	It("should report the current state of a container", func() {
		code, body := get("/api/container/C1/state")

		Expect(code).To(Equal(http.StatusOK))

		rsp := struct {
			Kind string `json:"kind"`
		}{}
		Expect(json.Unmarshal([]byte(body), &rsp)).To(Succeed())
		Expect(rsp.Kind).To(Equal(string(core.KindInitial)))
	})

	It("should return 404 for an unknown container", func() {
		code, _ := get("/api/container/nope/state")

		Expect(code).To(Equal(http.StatusNotFound))
	})

	It("should dispatch an event through the API", func() {
		code, _ := get("/api/container/C1/dispatch?kind=" +
			url.QueryEscape(string(core.KindLoadData)))

		Expect(code).To(Equal(http.StatusAccepted))
		Eventually(func() core.StateKind {
			return container.CurrentState().StateKind()
		}, time.Second).Should(Equal(core.KindLoaded))
	})

	It("should reject a dispatch with an unknown kind", func() {
		code, body := get("/api/container/C1/dispatch?kind=Bogus")

		Expect(code).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring("unknown event kind"))
	})

	It("should report operation metrics", func() {
		get("/api/container/C1/dispatch?kind=" +
			url.QueryEscape(string(core.KindLoadData)))
		Eventually(func() core.StateKind {
			return container.CurrentState().StateKind()
		}, time.Second).Should(Equal(core.KindLoaded))

		code, body := get("/api/container/C1/metrics")

		Expect(code).To(Equal(http.StatusOK))

		metrics := map[string]uint64{}
		Expect(json.Unmarshal([]byte(body), &metrics)).To(Succeed())
		Expect(metrics).To(HaveKeyWithValue(core.MetricLoad, uint64(1)))
	})

	It("should report in-flight operations", func() {
		code, body := get("/api/progress")

		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(Equal("[]"))
	})

	It("should pause and continue a container", func() {
		code, _ := get("/api/container/C1/pause")
		Expect(code).To(Equal(http.StatusOK))

		get("/api/container/C1/dispatch?kind=" +
			url.QueryEscape(string(core.KindResetData)))
		Consistently(func() int {
			return container.Pending()
		}, 100*time.Millisecond).Should(Equal(1))

		code, _ = get("/api/container/C1/continue")
		Expect(code).To(Equal(http.StatusOK))

		Eventually(func() int {
			return container.Pending()
		}, time.Second).Should(Equal(0))
	})
})

var _ = Describe("Event from request", func() {
	It("should keep the data absent when the query omits it", func() {
		r := httptest.NewRequest(http.MethodGet,
			"/api/container/C1/dispatch?kind=LoadData", nil)

		event, err := eventFromRequest(r)

		Expect(err).ToNot(HaveOccurred())
		Expect(event.(core.LoadDataEvent).HasData).To(BeFalse())
	})

	It("should carry a blank data value when the query includes it", func() {
		r := httptest.NewRequest(http.MethodGet,
			"/api/container/C1/dispatch?kind=LoadData&data=", nil)

		event, err := eventFromRequest(r)

		Expect(err).ToNot(HaveOccurred())
		Expect(event.(core.LoadDataEvent).HasData).To(BeTrue())
	})
})

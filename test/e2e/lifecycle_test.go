//go:build e2e

package e2e

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/heuermh/eggo/internal/cluster"
	"github.com/heuermh/eggo/internal/config"
	"github.com/heuermh/eggo/internal/platform/aws"
)

var _ = Describe("Cluster lifecycle", Ordered, func() {
	var locator *cluster.Locator

	BeforeAll(func(ctx SpecContext) {
		cfg, err := config.Load(configPath)
		Expect(err).NotTo(HaveOccurred())
		client, err := aws.NewRealClient(ctx, cfg.Region, cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey)
		Expect(err).NotTo(HaveOccurred())
		locator = cluster.NewLocator(client)
	})

	AfterAll(func(ctx SpecContext) {
		if os.Getenv("EGGO_E2E_KEEP") != "" {
			GinkgoWriter.Printf("EGGO_E2E_KEEP set, leaving stack %s\n", stackName)
			return
		}
		if _, err := locator.Launcher(ctx, stackName); cluster.IsNotFound(err) {
			return
		}
		_, err := eggo("teardown", "--yes")
		Expect(err).NotTo(HaveOccurred())
	})

	It("provisions the cluster", func() {
		_, err := eggo("provision")
		Expect(err).NotTo(HaveOccurred())
	})

	It("resolves every node", func(ctx SpecContext) {
		topo, err := locator.Topology(ctx, stackName)
		Expect(err).NotTo(HaveOccurred())
		Expect(topo.Launcher.PublicIP).NotTo(BeEmpty())
		Expect(topo.Manager.PrivateIP).NotTo(BeEmpty())
		Expect(topo.Workers).NotTo(BeEmpty())
	})

	It("sizes YARN without restarting", func() {
		_, err := eggo("adjust-yarn-memory-limits", "--restart=false")
		Expect(err).NotTo(HaveOccurred())
	})

	It("installs the environment variables", func() {
		_, err := eggo("install-env-vars")
		Expect(err).NotTo(HaveOccurred())
	})

	It("reuses the stack and launcher on a second provision", func() {
		_, err := eggo("provision")
		Expect(err).NotTo(HaveOccurred())
	})

	It("leaves nothing behind after teardown", func(ctx SpecContext) {
		_, err := eggo("teardown", "--yes")
		Expect(err).NotTo(HaveOccurred())

		_, err = locator.Topology(ctx, stackName)
		Expect(cluster.IsNotFound(err)).To(BeTrue())
	})
})

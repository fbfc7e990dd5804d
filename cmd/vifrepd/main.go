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

package main

import (
	"flag"
	"os"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/golang/glog"

	"github.com/ovn-org/ovn-vif/pkg/config"
	"github.com/ovn-org/ovn-vif/pkg/plugprovider"
	"github.com/ovn-org/ovn-vif/pkg/repcache"
)

func main() {
	configPath := flag.String("config", "", "path to the vifrepd flat JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		glog.Fatalf("failed to load config: %v", err)
	}

	provider := plugprovider.New()
	if err := provider.Init(); err != nil {
		glog.Fatalf("failed to initialize plug provider: %v", err)
	}
	defer provider.Destroy()

	go keepAlive(cfg.HealthCheckFile, cfg.HealthCheckInterval)

	resyncCache := repcache.Cache{}
	pollInterval := time.Duration(cfg.PollInterval) * time.Second
	reconcileInterval := time.Duration(cfg.ReconcileInterval) * time.Minute

	wait.JitterUntil(func() {
		jitteredReconcile := wait.Jitter(reconcileInterval, 1.2)
		if time.Since(resyncCache.LastResyncTime()) >= jitteredReconcile {
			count, err := provider.Resync()
			if err != nil {
				glog.Errorf("resync failed: %v", err)
			} else {
				glog.V(2).Infof("resync complete, %d live representor records", count)
				resyncCache.Refresh(count)
			}
		}

		changed, err := provider.Run()
		if err != nil {
			glog.Errorf("run failed: %v", err)
			return
		}
		if changed {
			glog.V(4).Info("port table changed")
		}
	}, pollInterval, 1.2, true, wait.NeverStop)
}

func keepAlive(healthCheckFile string, healthCheckInterval int) {
	wait.Forever(func() {
		_, err := os.Stat(healthCheckFile)
		if os.IsNotExist(err) {
			file, err := os.Create(healthCheckFile)
			if err != nil {
				glog.Fatalf("failed to create file: %s, err: %v", healthCheckFile, err)
			}
			defer file.Close()
		} else {
			now := time.Now().Local()
			if err := os.Chtimes(healthCheckFile, now, now); err != nil {
				glog.Errorf("failed to change modification time of file: %s, err: %v", healthCheckFile, err)
			}
		}
	}, time.Duration(healthCheckInterval)*time.Second)
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerPolicy(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")
	srv.JSON("ascan/view/scanners", `{"scanners":[{"id":"40012","name":"Cross Site Scripting (Reflected)","enabled":"true","attackStrength":"DEFAULT","alertThreshold":"DEFAULT","cweId":"79","wascId":"8"}]}`)
	srv.JSON("ascan/action/enableScanners", `{"Result":"OK"}`)
	srv.JSON("ascan/action/disableAllScanners", `{"Result":"OK"}`)
	srv.JSON("ascan/action/setScannerAttackStrength", `{"Result":"OK"}`)
	srv.JSON("pscan/action/setEnabled", `{"Result":"OK"}`)
	srv.JSON("ascan/action/setOptionHandleAntiCSRFTokens", `{"Result":"OK"}`)
	svc := NewScannerPolicyService(client, testLogger())
	ctx := context.Background()

	scanners, err := svc.Scanners(ctx, "")
	require.NoError(t, err)
	require.Len(t, scanners, 1)
	assert.Equal(t, "79", scanners[0].CWEID)
	assert.True(t, scanners[0].Enabled)

	require.NoError(t, svc.DisableAllScanners(ctx, "Light"))
	require.NoError(t, svc.EnableScanners(ctx, "40012", "40014"))
	assert.Equal(t, "40012,40014", srv.CallsTo("ascan/action/enableScanners")[0].Params.Get("ids"))
	assert.True(t, errors.Is(svc.EnableScanners(ctx), model.ErrUsage))

	require.NoError(t, svc.SetAttackStrength(ctx, "40012", "HIGH", "Light"))
	params := srv.CallsTo("ascan/action/setScannerAttackStrength")[0].Params
	assert.Equal(t, "HIGH", params.Get("attackStrength"))
	assert.Equal(t, "Light", params.Get("scanPolicyName"))

	require.NoError(t, svc.SetPassiveScanEnabled(ctx, false))
	assert.Equal(t, "false", srv.CallsTo("pscan/action/setEnabled")[0].Params.Get("enabled"))
	require.NoError(t, svc.SetHandleAntiCSRFTokens(ctx, true))
	assert.Equal(t, "true", srv.CallsTo("ascan/action/setOptionHandleAntiCSRFTokens")[0].Params.Get("Boolean"))
}

func TestScripts(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")
	srv.JSON("script/view/listEngines", `{"listEngines":["ECMAScript : Oracle Nashorn","Zest : Mozilla Zest"]}`)
	srv.JSON("script/view/listScripts", `{"listScripts":[{"name":"login.js","type":"authentication","engine":"ECMAScript : Oracle Nashorn","description":"","error":"false"}]}`)
	srv.JSON("script/action/load", `{"Result":"OK"}`)
	srv.JSON("script/action/remove", `{"code":"does_not_exist","message":"Does Not Exist"}`)
	svc := NewScriptService(client, testLogger())
	ctx := context.Background()

	engines, err := svc.Engines(ctx)
	require.NoError(t, err)
	assert.Len(t, engines, 2)

	scripts, err := svc.Scripts(ctx)
	require.NoError(t, err)
	require.Len(t, scripts, 1)
	assert.Equal(t, "authentication", scripts[0].Type)

	require.NoError(t, svc.Load(ctx, model.ScriptSpec{
		Name: "login.js", Type: "authentication", Engine: "ECMAScript : Oracle Nashorn", FileName: "/scripts/login.js",
	}))
	assert.Equal(t, "/scripts/login.js", srv.CallsTo("script/action/load")[0].Params.Get("fileName"))

	err = svc.Load(ctx, model.ScriptSpec{Name: "x.js"})
	assert.True(t, errors.Is(err, model.ErrUsage))

	assert.NoError(t, svc.Remove(ctx, "gone.js"), "removing an unknown script succeeds")
}

// Package config loads route manifests.
//
// A manifest declares the router settings and the ordered routes, plus the
// settings of the serve command. It is stored as helm.json or helm.yaml,
// locally or in S3.
//
// # Manifest Structure
//
//	prefix: "!"
//	caseSensitive: false
//	strict: false
//	routes:
//	  - pattern: /
//	    name: home
//	  - pattern: /old/:id
//	    redirect: /new
//	  - pattern: /user/:name
//	    name: user
//	    continue: true
//	  - pattern: "*"
//	    name: not-found
//	serve:
//	  host: localhost
//	  port: 8080
//	  socketPath: /helm/ws
//	  metricsPath: /metrics
//	metrics:
//	  namespace: helm
//	tracing:
//	  tracerName: helm
//
// # Usage
//
//	cfg, err := config.Load(ctx, "s3://my-bucket/helm.yaml", config.WithObjectGetter(client))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	r := router.New(src, cfg.RouterOptions()...)
//	err = cfg.Register(r, func(rt config.Route) router.HandlerFunc { ... })
package config

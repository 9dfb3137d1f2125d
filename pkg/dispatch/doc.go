// Package dispatch is the single entry point for sending a request over any
// supported protocol.
//
// A Dispatcher selects the sender for the request's variant and returns that
// sender's result unchanged. Every failure, including a panic inside a
// sender, comes back as a *protocol.Error; its Error() text is what callers
// display.
//
//	d := dispatch.New(dispatch.Options{Logger: log})
//	defer d.Close(ctx)
//
//	out, err := d.Invoke(ctx, []byte(`{"protocol":"MQTT_SN","gateway":"127.0.0.1","port":10000,"data":"hello"}`))
package dispatch

package rod

// Test pages served over httptest.
const (
	ApplicationHTML = `<!DOCTYPE html>
<html>
<body>
<div class="main">
	<form id="application-form">
		<label for="first_name">First Name</label>
		<input id="first_name" type="text" name="first_name" aria-required="true" value="Old" />
		<label for="email">Email</label>
		<input id="email" type="email" name="email" required />
		<input type="hidden" name="token" value="secret" />
		<fieldset>
			<legend>  Work authorization </legend>
			<select id="country" name="country">
				<option value="">--</option>
				<option value="US">United States</option>
				<option value="CA">Canada</option>
			</select>
		</fieldset>
		<input type="checkbox" id="gdpr[0]" />
		<label for="gdpr[0]">I consent</label>
		<input type="file" id="resume" />
		<textarea id="cover" aria-describedby="cover-help"></textarea>
		<p id="cover-help">Optional</p>
		<div class="application--submit"><button type="submit">Submit</button></div>
	</form>
</div>
<script>
	document.getElementById('application-form').addEventListener('submit', (e) => {
		e.preventDefault();
		document.body.setAttribute('data-submitted', 'yes');
	});
</script>
</body>
</html>`

	LazyHTML = `<!DOCTYPE html>
<html>
<body style="margin:0">
	<div style="height: 3000px">spacer</div>
	<div id="tail"></div>
	<script>
		window.addEventListener('scroll', () => {
			const tail = document.getElementById('tail');
			if (!tail.firstChild && window.scrollY + window.innerHeight >= document.body.scrollHeight - 5) {
				tail.innerHTML = '<div style="height: 600px"><input id="late" /></div>';
			}
		});
	</script>
</body>
</html>`

	ChallengeHTML = `<!DOCTYPE html>
<html>
<body>
	<div id="zero" style="height:0;overflow:hidden"><iframe srcdoc="<p>x</p>"></iframe></div>
	<div id="hidden-frames" style="height:200px"><iframe style="visibility:hidden" srcdoc="<p>x</p>"></iframe></div>
	<div id="live" style="position:absolute;left:50px;top:60px;width:300px;height:200px">
		<iframe style="position:absolute;left:0;top:0;visibility:hidden;width:300px;height:200px;border:0" srcdoc="<p>a</p>"></iframe>
		<iframe style="position:absolute;left:0;top:0;width:300px;height:200px;border:0" srcdoc="<p>b</p>"></iframe>
	</div>
</body>
</html>`
)

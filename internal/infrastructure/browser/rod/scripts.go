package rod

const scrollScript = `(dy) => {
	window.scrollBy(0, dy);
	const doc = document.scrollingElement || document.documentElement;
	return { top: window.scrollY, height: doc.scrollHeight, viewport: window.innerHeight };
}`

const controlsScript = `() => {
	const text = (el) => (el ? el.textContent : '').replace(/\s+/g, ' ').trim();
	const skip = ['hidden', 'submit', 'button', 'reset', 'image'];
	const out = [];
	for (const el of document.querySelectorAll('input, select, textarea')) {
		const tag = el.tagName.toLowerCase();
		let type = (el.getAttribute('type') || 'text').toLowerCase();
		if (tag === 'select') type = el.multiple ? 'select-multiple' : 'select-one';
		if (tag === 'textarea') type = 'textarea';
		if (skip.includes(type)) continue;

		const fieldset = el.closest('fieldset');
		const legend = fieldset ? fieldset.querySelector('legend') : null;
		let label = '';
		if (el.labels && el.labels.length) label = text(el.labels[0]);
		else if (el.getAttribute('aria-label')) label = el.getAttribute('aria-label').trim();

		let description = '';
		const describedBy = el.getAttribute('aria-describedby');
		if (describedBy) {
			description = describedBy.split(/\s+/)
				.map((id) => text(document.getElementById(id)))
				.filter(Boolean)
				.join(' ');
		}

		const field = {
			type,
			id: el.id || '',
			name: el.getAttribute('name') || '',
			placeholder: el.getAttribute('placeholder') || '',
			required: !!el.required || el.getAttribute('aria-required') === 'true',
			value: type === 'file' || type === 'checkbox' ? '' : (el.value || ''),
			label,
			groupLabel: text(legend),
			description,
		};
		if (tag === 'select') {
			field.options = Array.from(el.options).map((o) => ({ value: o.value, text: text(o) }));
		}
		if (type === 'checkbox' && el.id) {
			field.optionLabel = text(document.querySelector('label[for="' + CSS.escape(el.id) + '"]'));
		}
		out.push(field);
	}
	return out;
}`

const probeScript = `(sel) => {
	const containers = Array.from(document.querySelectorAll(sel));
	if (containers.length === 0) return { present: false, height: 0, frames: 0, visible: -1 };
	const height = Math.max(...containers.map((c) => c.getBoundingClientRect().height));
	const frames = Array.from(document.querySelectorAll('iframe'))
		.filter((f) => containers.some((c) => c !== f && c.contains(f)));
	const visible = frames.findIndex((f) => {
		const style = window.getComputedStyle(f);
		return style.visibility === 'visible' && style.display !== 'none' && f.getBoundingClientRect().height > 0;
	});
	return { present: true, height, frames: frames.length, visible };
}`

const optionValuesScript = `() => Array.from(this.options || []).map((o) => o.value)`
